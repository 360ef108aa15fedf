package models

type FlashcardItem struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Category string `json:"category" yaml:"category"`
	MediaURL string `json:"media_url" yaml:"media"`
	VideoURL string `json:"video_url,omitempty" yaml:"video"`
}

// Playable reports whether the item has a video the quiz can show as a prompt.
func (i FlashcardItem) Playable() bool {
	return i.VideoURL != ""
}

type Module struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Items       []FlashcardItem `json:"items"`
}

type ModuleSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	ItemCount   int    `json:"item_count"`
}

func (m Module) Summary() ModuleSummary {
	return ModuleSummary{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Icon:        m.Icon,
		ItemCount:   len(m.Items),
	}
}
