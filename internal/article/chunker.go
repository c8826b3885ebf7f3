package article

import (
	"strings"
)

// ChunkerConfig 分块器配置
type ChunkerConfig struct {
	MinWords int // 块的最小词数
	MaxWords int // 块的最大词数
}

// DefaultChunkerConfig 返回默认分块器配置
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MinWords: 50,
		MaxWords: 150,
	}
}

// Chunker 将文章按自然段落聚合成适合逐段学习的文本块
type Chunker struct {
	config ChunkerConfig
}

// NewChunker 创建新的文本分块器
func NewChunker(config ChunkerConfig) *Chunker {
	return &Chunker{
		config: config,
	}
}

// Chunk 将文章分割成文本块
// 自然段落不会被拆开；块的词数尽量保持在[MinWords, MaxWords]区间内，
// 当缓冲区不足MinWords时宁可超出MaxWords也不拆散段落
func (c *Chunker) Chunk(text string) []string {
	paragraphs := c.splitIntoParagraphs(text)

	var chunks []string
	var buffer strings.Builder
	bufferWords := 0

	for _, para := range paragraphs {
		paraWords := wordCount(para)

		if buffer.Len() == 0 {
			buffer.WriteString(para)
			bufferWords = paraWords
			continue
		}

		if bufferWords+paraWords <= c.config.MaxWords {
			// 合并后仍在上限内，段落之间保留空行
			buffer.WriteString("\n\n")
			buffer.WriteString(para)
			bufferWords += paraWords
		} else if bufferWords >= c.config.MinWords {
			// 当前块已满足最小词数，落盘并开始新块
			chunks = append(chunks, buffer.String())
			buffer.Reset()
			buffer.WriteString(para)
			bufferWords = paraWords
		} else {
			// 块太小不能单独成块，接受超出上限
			buffer.WriteString("\n\n")
			buffer.WriteString(para)
			bufferWords += paraWords
		}
	}

	// 处理最后一个块
	if buffer.Len() > 0 {
		chunks = append(chunks, buffer.String())
	}

	// 没有任何可用段落时整篇文章作为单个块返回
	if len(chunks) == 0 {
		return []string{text}
	}

	return chunks
}

// splitIntoParagraphs 按空行分割出自然段落
func (c *Chunker) splitIntoParagraphs(text string) []string {
	// 规范化段落分隔符
	text = strings.ReplaceAll(text, "\r\n", "\n")

	// 按空行分段
	paragraphs := strings.Split(text, "\n\n")

	// 过滤空段落
	var result []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}

	return result
}

// wordCount 统计空白分隔的词数
func wordCount(text string) int {
	return len(strings.Fields(text))
}
