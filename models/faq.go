package models

// FAQRecord 检索到的 FAQ 文档，由外部索引维护，只读
type FAQRecord struct {
	Section  string `json:"section"`
	Question string `json:"question"`
	Text     string `json:"text"`
	Course   string `json:"course"`
}
