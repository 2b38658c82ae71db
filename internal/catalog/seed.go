package catalog

// Analytics concepts used by the built-in catalog.
const (
	ConceptInitiation        = "initiation"
	ConceptContactActivation = "contact-activation"
	ConceptAmplification     = "amplification"
	ConceptPropagation       = "propagation"
	ConceptClotFormation     = "clot-formation"
	ConceptRegulation        = "regulation"
	ConceptFibrinolysis      = "fibrinolysis"
)

// defaultCatalog is built once by init; seed data is checked by the tests.
var defaultCatalog *Catalog

func init() {
	c, err := New("coagulation", seedFactors())
	if err != nil {
		panic(err)
	}
	defaultCatalog = c
}

// Default returns the built-in coagulation cascade catalog.
func Default() *Catalog {
	return defaultCatalog
}

func seedFactors() []Factor {
	return []Factor{
		{
			ID: "tf", Name: "Tissue Factor", Pathway: PathwayExtrinsic,
			Target: Point{X: 120, Y: 100}, Concept: ConceptInitiation,
			Description: "Transmembrane receptor exposed at the site of vessel injury.",
			Clinical:    "Released in trauma and sepsis; drives disseminated intravascular coagulation.",
			Antagonists: []string{"tfpi"},
		},
		{
			ID: "f7", Name: "Factor VII", Pathway: PathwayExtrinsic,
			Target: Point{X: 260, Y: 100}, Concept: ConceptInitiation,
			Description: "Binds tissue factor to form the extrinsic tenase complex.",
			Clinical:    "Shortest half-life of the vitamin K factors; PT rises first on warfarin.",
			Antagonists: []string{"tfpi", "warfarin"},
		},
		{
			ID: "f12", Name: "Factor XII", Pathway: PathwayIntrinsic,
			Target: Point{X: 640, Y: 60}, Concept: ConceptContactActivation,
			Description: "Hageman factor; activated on negatively charged surfaces.",
			Clinical:    "Deficiency prolongs aPTT without causing bleeding.",
			Antagonists: []string{"c1-inhibitor"},
		},
		{
			ID: "f11", Name: "Factor XI", Pathway: PathwayIntrinsic,
			Target: Point{X: 640, Y: 170}, Concept: ConceptContactActivation,
			Description: "Activated by XIIa and by thrombin feedback.",
			Clinical:    "Hemophilia C; mild bleeding after surgery.",
			Antagonists: []string{"antithrombin"},
		},
		{
			ID: "f9", Name: "Factor IX", Pathway: PathwayIntrinsic,
			Target: Point{X: 640, Y: 280}, Concept: ConceptAmplification,
			Description: "Christmas factor; with VIIIa forms the intrinsic tenase.",
			Clinical:    "Hemophilia B; X-linked recessive.",
			Antagonists: []string{"antithrombin", "warfarin"},
		},
		{
			ID: "f8", Name: "Factor VIII", Pathway: PathwayIntrinsic,
			Target: Point{X: 790, Y: 280}, Concept: ConceptAmplification,
			Description: "Cofactor for IXa; circulates bound to von Willebrand factor.",
			Clinical:    "Hemophilia A; most common inherited factor deficiency.",
			Antagonists: []string{"protein-c"},
		},
		{
			ID: "f10", Name: "Factor X", Pathway: PathwayCommon,
			Target: Point{X: 440, Y: 380}, Concept: ConceptPropagation,
			Description: "Stuart-Prower factor; convergence point of both pathways.",
			Clinical:    "Target of rivaroxaban and apixaban.",
			Antagonists: []string{"antithrombin", "rivaroxaban", "warfarin"},
		},
		{
			ID: "f5", Name: "Factor V", Pathway: PathwayCommon,
			Target: Point{X: 590, Y: 380}, Concept: ConceptPropagation,
			Description: "Cofactor for Xa in the prothrombinase complex.",
			Clinical:    "Factor V Leiden resists protein C and causes thrombophilia.",
			Antagonists: []string{"protein-c"},
		},
		{
			ID: "f2", Name: "Prothrombin", Pathway: PathwayCommon,
			Target: Point{X: 440, Y: 490}, Concept: ConceptPropagation,
			Description: "Converted to thrombin by prothrombinase.",
			Clinical:    "Thrombin is inhibited directly by dabigatran.",
			Antagonists: []string{"antithrombin", "dabigatran", "warfarin"},
		},
		{
			ID: "f1", Name: "Fibrinogen", Pathway: PathwayCommon,
			Target: Point{X: 440, Y: 600}, Concept: ConceptClotFormation,
			Description: "Cleaved by thrombin into fibrin monomers.",
			Clinical:    "Consumed in DIC; replaced with cryoprecipitate.",
		},
		{
			ID: "f13", Name: "Factor XIII", Pathway: PathwayCommon,
			Target: Point{X: 600, Y: 600}, Concept: ConceptClotFormation,
			Description: "Transglutaminase that cross-links fibrin.",
			Clinical:    "Deficiency causes delayed bleeding with normal PT and aPTT.",
		},
		{
			ID: "antithrombin", Name: "Antithrombin", Pathway: PathwayRegulatory,
			Target: Point{X: 140, Y: 420}, Concept: ConceptRegulation,
			Description: "Serpin inhibiting thrombin and Xa; potentiated by heparin.",
			Clinical:    "Deficiency causes heparin resistance.",
		},
		{
			ID: "protein-c", Name: "Protein C", Pathway: PathwayRegulatory,
			Target: Point{X: 140, Y: 540}, Concept: ConceptRegulation,
			Description: "Activated by thrombin-thrombomodulin; inactivates Va and VIIIa.",
			Clinical:    "Early drop on warfarin can cause skin necrosis.",
		},
		{
			ID: "protein-s", Name: "Protein S", Pathway: PathwayRegulatory,
			Target: Point{X: 280, Y: 540}, Concept: ConceptRegulation,
			Description: "Cofactor for activated protein C.",
			Clinical:    "Deficiency presents as venous thromboembolism.",
		},
		{
			ID: "tpa", Name: "Tissue Plasminogen Activator", Pathway: PathwayFibrinolysis,
			Target: Point{X: 840, Y: 490}, Concept: ConceptFibrinolysis,
			Description: "Converts plasminogen to plasmin on the fibrin surface.",
			Clinical:    "Given as alteplase in acute ischemic stroke.",
			Antagonists: []string{"pai-1"},
		},
		{
			ID: "plasminogen", Name: "Plasminogen", Pathway: PathwayFibrinolysis,
			Target: Point{X: 840, Y: 600}, Concept: ConceptFibrinolysis,
			Description: "Zymogen of plasmin, which degrades fibrin.",
			Clinical:    "Tranexamic acid blocks its binding to fibrin.",
			Antagonists: []string{"alpha2-antiplasmin", "tranexamic-acid"},
		},
	}
}
