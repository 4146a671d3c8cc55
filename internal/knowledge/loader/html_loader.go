package loader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLLoader HTML 加载器
// 块级元素之间以空行分隔，h1-h6 转换为 ATX 标题以便按标题分块
type HTMLLoader struct{}

// NewHTMLLoader 创建 HTML 加载器
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

// Load 解析 HTML 并提取正文
func (l *HTMLLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var w htmlTextWriter
	w.walk(doc)

	meta := map[string]any{"loader": "html"}
	if title := findTitle(doc); title != "" {
		meta["title"] = title
	}
	return &Document{Content: w.text(), Metadata: meta}, nil
}

// SupportedFormats 返回支持的文档格式
func (l *HTMLLoader) SupportedFormats() []Format {
	return []Format{FormatHTML}
}

// 不输出内容的元素
var skippedElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// 前后断段的块级元素
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Nav: true,
	atom.Aside: true, atom.Blockquote: true, atom.Pre: true, atom.Ul: true,
	atom.Ol: true, atom.Table: true, atom.Figure: true, atom.Hr: true,
}

// 前后换行的行级元素
var lineElements = map[atom.Atom]bool{
	atom.Li: true, atom.Tr: true, atom.Dt: true, atom.Dd: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// htmlTextWriter 按 HTML 空白规则输出文本，newlines 记录末尾连续换行数
type htmlTextWriter struct {
	sb       strings.Builder
	newlines int
	space    bool
}

func (w *htmlTextWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.writeText(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
	}

	level, heading := headingLevels[n.DataAtom]
	switch {
	case heading:
		w.breakLines(2)
		w.sb.WriteString(strings.Repeat("#", level))
		w.newlines = 0
		w.space = true
	case blockElements[n.DataAtom]:
		w.breakLines(2)
	case lineElements[n.DataAtom], n.DataAtom == atom.Br:
		w.breakLines(1)
	case n.DataAtom == atom.Td || n.DataAtom == atom.Th:
		if w.sb.Len() > 0 && w.newlines == 0 {
			w.sb.WriteString(" |")
			w.space = true
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	switch {
	case heading, blockElements[n.DataAtom]:
		w.breakLines(2)
	case lineElements[n.DataAtom]:
		w.breakLines(1)
	}
}

// writeText 折叠空白，纯空白文本只留下一个待写空格
func (w *htmlTextWriter) writeText(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" && w.sb.Len() > 0 && w.newlines == 0 {
			w.space = true
		}
		return
	}

	leading := strings.TrimLeftFunc(s, unicode.IsSpace) != s
	if (w.space || leading) && w.sb.Len() > 0 && w.newlines == 0 {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(strings.Join(fields, " "))
	w.newlines = 0
	w.space = strings.TrimRightFunc(s, unicode.IsSpace) != s
}

// breakLines 保证末尾至少有 n 个换行
func (w *htmlTextWriter) breakLines(n int) {
	w.space = false
	if w.sb.Len() == 0 {
		return
	}
	for w.newlines < n {
		w.sb.WriteByte('\n')
		w.newlines++
	}
}

func (w *htmlTextWriter) text() string {
	return strings.TrimSpace(w.sb.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
