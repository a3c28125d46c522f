package store

// SiteSettings is the admin-editable singleton record behind the landing
// page chrome.
type SiteSettings struct {
	HeroBadge         string `json:"hero_badge" yaml:"hero_badge"`
	HeroTitlePart1    string `json:"hero_title_part1" yaml:"hero_title_part1"`
	HeroTitleGradient string `json:"hero_title_gradient" yaml:"hero_title_gradient"`
	HeroSubtitle      string `json:"hero_subtitle" yaml:"hero_subtitle"`
	UploadBoxTitle    string `json:"upload_box_title" yaml:"upload_box_title"`
	UploadBoxDesc     string `json:"upload_box_desc" yaml:"upload_box_desc"`
	FooterBrandName   string `json:"footer_brand_name" yaml:"footer_brand_name"`
	HeroImageURL      string `json:"hero_image_url,omitempty" yaml:"hero_image_url"`
	LogoURL           string `json:"logo_url,omitempty" yaml:"logo_url"`
	BgImageURL        string `json:"bg_image_url,omitempty" yaml:"bg_image_url"`
}

// SettingsField describes one admin-form field. The list is fixed and
// ordered; settingsFieldCount pins it to the struct so a new field cannot be
// added to one side without the other.
type SettingsField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  string `json:"kind"` // "text", "textarea" or "url"
}

var SettingsFields = [settingsFieldCount]SettingsField{
	{Key: "hero_badge", Label: "Hero badge", Kind: "text"},
	{Key: "hero_title_part1", Label: "Hero title (first part)", Kind: "text"},
	{Key: "hero_title_gradient", Label: "Hero title (gradient part)", Kind: "text"},
	{Key: "hero_subtitle", Label: "Hero subtitle", Kind: "textarea"},
	{Key: "upload_box_title", Label: "Upload box title", Kind: "text"},
	{Key: "upload_box_desc", Label: "Upload box description", Kind: "text"},
	{Key: "footer_brand_name", Label: "Footer brand name", Kind: "text"},
	{Key: "hero_image_url", Label: "Hero image URL", Kind: "url"},
	{Key: "logo_url", Label: "Logo URL", Kind: "url"},
	{Key: "bg_image_url", Label: "Background image URL", Kind: "url"},
}

const settingsFieldCount = 10

// DefaultSettings are the built-in values the UI falls back to whenever the
// store is unreachable.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		HeroBadge:         "Next-generation presentation generator",
		HeroTitlePart1:    "Turn your files into",
		HeroTitleGradient: "Living Slides",
		HeroSubtitle:      "Upload a Word or Excel file. Our AI reads its content and prepares a professional slide deck with matching imagery.",
		UploadBoxTitle:    "Drop your file here",
		UploadBoxDesc:     "Word or Excel files (max 20MB)",
		FooterBrandName:   "AI Taqdimot Master",
	}
}
