package models

// Settings is the per-user parsing configuration. It is read-only input to the
// parser service; only the settings API mutates it.
type Settings struct {
	UserID             string      `json:"user_id"`
	OCRLang            string      `json:"ocr_lang"`
	ForceOCR           bool        `json:"force_ocr"`
	TableRecognition   bool        `json:"table_recognition"`
	FormulaRecognition bool        `json:"formula_recognition"`
	Backend            BackendType `json:"backend"`
}

// DefaultSettings returns the configuration used when a user has never saved
// their own.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:             userID,
		OCRLang:            "ch",
		ForceOCR:           false,
		TableRecognition:   true,
		FormulaRecognition: true,
		Backend:            BackendPipeline,
	}
}

type UpdateSettingsRequest struct {
	OCRLang            *string `json:"ocr_lang"`
	ForceOCR           *bool   `json:"force_ocr"`
	TableRecognition   *bool   `json:"table_recognition"`
	FormulaRecognition *bool   `json:"formula_recognition"`
	Backend            *string `json:"backend"`
}
