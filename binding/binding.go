package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// markerPattern 同时匹配旧式 %X 标记与 ${VAR} 变量。
// %C 之后必须跟数字或 *，其余未知字母不会被匹配，保持原样输出。
var markerPattern = regexp.MustCompile(`%(?:%|C[0-9*]|[KZYDRSNLFPT])|\$\{([^}]*)\}`)

// Fields 是替换文本标记所需的标题栏与图纸信息。
type Fields struct {
	Title    string
	Date     string
	Revision string
	Company  string
	Comments []string // Comments[0] 对应 %C0 与 ${COMMENT1}

	SheetIndex  int
	SheetCount  int
	FileName    string
	SheetPath   string
	PaperFormat string
	LayerName   string
	AppVersion  string

	// CommentSeparator 用于 %C* 与 ${COMMENTS}，为空时使用单个空格。
	CommentSeparator string

	// Vars 为用户自定义变量，支持 ${project.name} 或 ${items[0]} 形式的路径。
	Vars map[string]any
}

// Expand 将文本中的标记替换为 f 中的值。未知或格式错误的标记原样保留。
func Expand(text string, f Fields) string {
	if !strings.ContainsAny(text, "%$") {
		return text
	}
	return markerPattern.ReplaceAllStringFunc(text, func(match string) string {
		if strings.HasPrefix(match, "${") {
			name := strings.TrimSpace(match[2 : len(match)-1])
			if val, ok := f.variable(name); ok {
				return val
			}
			return match
		}
		return f.legacy(match[1:])
	})
}

func (f Fields) legacy(code string) string {
	switch code {
	case "%":
		return "%"
	case "K":
		return f.AppVersion
	case "Z":
		return f.PaperFormat
	case "Y":
		return f.Company
	case "D":
		return f.Date
	case "R":
		return f.Revision
	case "S":
		return strconv.Itoa(f.SheetIndex)
	case "N":
		return strconv.Itoa(f.SheetCount)
	case "L":
		return f.LayerName
	case "F":
		return f.FileName
	case "P":
		return f.SheetPath
	case "T":
		return f.Title
	case "C*":
		return f.allComments()
	}
	if len(code) == 2 && code[0] == 'C' {
		return f.comment(int(code[1] - '0'))
	}
	return "%" + code
}

func (f Fields) variable(name string) (string, bool) {
	switch name {
	case "":
		return "", false
	case "TITLE":
		return f.Title, true
	case "DATE", "ISSUE_DATE":
		return f.Date, true
	case "REVISION":
		return f.Revision, true
	case "COMPANY":
		return f.Company, true
	case "COMMENTS":
		return f.allComments(), true
	case "#", "SHEETNUMBER":
		return strconv.Itoa(f.SheetIndex), true
	case "##", "SHEETCOUNT":
		return strconv.Itoa(f.SheetCount), true
	case "FILENAME":
		return f.FileName, true
	case "SHEETPATH":
		return f.SheetPath, true
	case "PAPER":
		return f.PaperFormat, true
	case "LAYER":
		return f.LayerName, true
	case "APP_VERSION", "KICAD_VERSION":
		return f.AppVersion, true
	}
	if rest, ok := strings.CutPrefix(name, "COMMENT"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 9 {
			return f.comment(n - 1), true
		}
	}
	if f.Vars == nil {
		return "", false
	}
	val, ok := resolvePath(f.Vars, name)
	if !ok {
		return "", false
	}
	return fmt.Sprint(val), true
}

func (f Fields) comment(i int) string {
	if i < 0 || i >= len(f.Comments) {
		return ""
	}
	return f.Comments[i]
}

func (f Fields) allComments() string {
	sep := f.CommentSeparator
	if sep == "" {
		sep = " "
	}
	parts := make([]string, 0, len(f.Comments))
	for _, c := range f.Comments {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, sep)
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}
