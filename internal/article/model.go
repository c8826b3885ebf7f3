package article

// Question 针对段落的讨论问题，包含双语问答
type Question struct {
	Question            string `json:"question"`            // 英文问题
	QuestionTranslation string `json:"questionTranslation"` // 问题的繁体中文翻译
	Answer              string `json:"answer"`              // 英文示范答案
	AnswerTranslation   string `json:"answerTranslation"`   // 答案的繁体中文翻译
}

// ParagraphContent 单个段落的学习内容
type ParagraphContent struct {
	Index                    int        `json:"index"`                    // 段落序号，从1开始
	Original                 string     `json:"original"`                 // 段落原文
	Translation              string     `json:"translation"`              // 繁体中文翻译
	SimpleSummary            string     `json:"simpleSummary"`            // 简化英文总结
	SimpleSummaryTranslation string     `json:"simpleSummaryTranslation"` // 总结的繁体中文翻译
	Questions                []Question `json:"questions"`                // 讨论问题，固定3个
}

// ArticleResult 整篇文章的处理结果
type ArticleResult struct {
	Summary    string             `json:"summary"`    // 全文要点摘要
	Paragraphs []ParagraphContent `json:"paragraphs"` // 逐段学习内容，顺序与原文一致
}
