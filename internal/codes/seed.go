package codes

// seedDescriptors is the built-in vocabulary for the bronchoscopy and
// pleural-procedure family. Keywords are matched lowercase.
var seedDescriptors = []Descriptor{
	{
		Code:          "31622",
		Label:         "Diagnostic bronchoscopy",
		Keywords:      []string{"diagnostic bronchoscopy", "airway inspection", "airways were inspected"},
		KeywordWeight: 0.55,
	},
	{
		Code:          "31623",
		Label:         "Bronchoscopy with brushing",
		Keywords:      []string{"bronchial brushing", "brushings were obtained", "cytology brush"},
		KeywordWeight: 0.75,
	},
	{
		Code:          "31624",
		Label:         "Bronchoscopy with bronchoalveolar lavage",
		Keywords:      []string{"bronchoalveolar lavage", "bal was performed", "lavage was performed", "lavage returned"},
		KeywordWeight: 0.8,
	},
	{
		Code:          "31625",
		Label:         "Bronchoscopy with endobronchial biopsy",
		Keywords:      []string{"endobronchial biopsy", "endobronchial biopsies"},
		KeywordWeight: 0.75,
	},
	{
		Code:          "31627",
		Label:         "Navigational bronchoscopy (add-on)",
		Keywords:      []string{"electromagnetic navigation", "navigational bronchoscopy", "navigation system"},
		KeywordWeight: 0.7,
		AddOn:         true,
	},
	{
		Code:          "31628",
		Label:         "Bronchoscopy with transbronchial lung biopsy, single lobe",
		Keywords:      []string{"transbronchial biopsy", "transbronchial biopsies", "transbronchial lung biopsy"},
		KeywordWeight: 0.8,
	},
	{
		Code:          "31629",
		Label:         "Bronchoscopy with transbronchial needle aspiration",
		Keywords:      []string{"transbronchial needle aspiration", "tbna", "needle aspiration"},
		KeywordWeight: 0.7,
	},
	{
		Code:          "31645",
		Label:         "Therapeutic aspiration of airways, initial",
		Keywords:      []string{"therapeutic aspiration", "secretions were aspirated", "mucus plug removal"},
		KeywordWeight: 0.65,
	},
	{
		Code:          "31646",
		Label:         "Therapeutic aspiration of airways, subsequent",
		Keywords:      []string{"repeat therapeutic aspiration", "subsequent aspiration"},
		KeywordWeight: 0.65,
	},
	{
		Code:          "31652",
		Label:         "EBUS-guided sampling, 1-2 mediastinal stations",
		Keywords:      []string{"ebus", "endobronchial ultrasound", "linear ebus"},
		KeywordWeight: 0.8,
	},
	{
		Code:          "31653",
		Label:         "EBUS-guided sampling, 3 or more mediastinal stations",
		Keywords:      []string{"stations 4r, 7 and", "three stations", "3 or more stations"},
		KeywordWeight: 0.8,
	},
	{
		Code:          "32550",
		Label:         "Insertion of tunneled indwelling pleural catheter",
		Keywords:      []string{"tunneled pleural catheter", "indwelling pleural catheter", "pleurx"},
		KeywordWeight: 0.9,
	},
	{
		Code:          "32551",
		Label:         "Tube thoracostomy",
		Keywords:      []string{"chest tube", "tube thoracostomy", "thoracostomy tube"},
		KeywordWeight: 0.85,
	},
	{
		Code:          "32554",
		Label:         "Thoracentesis without imaging guidance",
		Keywords:      []string{"thoracentesis"},
		KeywordWeight: 0.75,
	},
	{
		Code:          "32555",
		Label:         "Thoracentesis with imaging guidance",
		Keywords:      []string{"ultrasound-guided thoracentesis", "thoracentesis under ultrasound"},
		KeywordWeight: 0.8,
	},
}

// seedEquivalence groups sibling variants of the same clinical action.
// Within a class the codes are mutually exclusive: the deriver attributes
// exactly one of them, so presence of one must never be audited as absence
// of another.
var seedEquivalence = Table{
	Version: "v1",
	Classes: []Class{
		// Station-count variants of EBUS-guided sampling.
		{"31652", "31653"},
		// Initial vs subsequent therapeutic aspiration.
		{"31645", "31646"},
		// Imaging-guidance variants of thoracentesis.
		{"32554", "32555"},
	},
}
