package extract

type Job struct {
	LocalPath string
	FileName  string
	MIMEType  string
	FileSize  int64
}

type Result struct {
	Success   bool              `json:"success"`
	Text      string            `json:"text"`
	Method    string            `json:"method"`
	FileType  string            `json:"fileType"`
	MIMEType  string            `json:"mimeType"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	WordCount int               `json:"wordCount"`
	CharCount int               `json:"charCount"`
	Error     *string           `json:"error,omitempty"`
}

func BuildCounts(text string) (wordCount int, charCount int) {
	charCount = len([]rune(text))
	wordCount = 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if inWord {
				wordCount++
				inWord = false
			}
			continue
		}
		inWord = true
	}
	if inWord {
		wordCount++
	}
	return
}
