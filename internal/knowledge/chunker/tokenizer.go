package chunker

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

// 内置分词器名称
const (
	TokenizerWord     = "word"
	TokenizerGPT      = "gpt"
	TokenizerTiktoken = "tiktoken"
)

// tiktokenEncoding OpenAI 系列模型使用的编码
const tiktokenEncoding = "cl100k_base"

// Tokenizer 近似 Token 计数
type Tokenizer interface {
	Name() string
	Count(text string) int
}

func validTokenizer(name string) bool {
	switch name {
	case TokenizerWord, TokenizerGPT, TokenizerTiktoken:
		return true
	default:
		return false
	}
}

// NewTokenizer 按名称创建分词器
func NewTokenizer(name string) (Tokenizer, error) {
	switch name {
	case TokenizerWord, "":
		return WordTokenizer{}, nil
	case TokenizerGPT:
		return GPTTokenizer{}, nil
	case TokenizerTiktoken:
		return &TiktokenTokenizer{}, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer: %s", name)
	}
}

// WordTokenizer 空白分隔的单词数加标点数
type WordTokenizer struct{}

func (WordTokenizer) Name() string { return TokenizerWord }

func (WordTokenizer) Count(text string) int {
	n := len(strings.Fields(text))
	for _, r := range text {
		if unicode.IsPunct(r) {
			n++
		}
	}
	return n
}

// GPTTokenizer 按每 4 个字符一个 token 估算
type GPTTokenizer struct{}

func (GPTTokenizer) Name() string { return TokenizerGPT }

func (GPTTokenizer) Count(text string) int {
	return (runeLen(text) + 3) / 4
}

// TiktokenTokenizer cl100k_base 精确计数，编码表在首次使用时加载
// 加载失败时回退到 GPTTokenizer 的估算
type TiktokenTokenizer struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func (t *TiktokenTokenizer) Name() string { return TokenizerTiktoken }

func (t *TiktokenTokenizer) Count(text string) int {
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding(tiktokenEncoding)
	})
	if t.err != nil {
		return GPTTokenizer{}.Count(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Err 返回编码表加载错误
func (t *TiktokenTokenizer) Err() error {
	return t.err
}
