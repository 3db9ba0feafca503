package worksheet

import (
	"strconv"

	"github.com/ByLCY/pagelayout/geom"
	"github.com/ByLCY/pagelayout/layout"
)

// Summary 是属性面板显示的条目摘要。
type Summary struct {
	Type              string     `json:"type"`
	Text              string     `json:"text,omitempty"`
	PageOption        string     `json:"pageOption"`
	RepeatCount       int        `json:"repeatCount"`
	LabelIncrement    int        `json:"labelIncrement"`
	PositionIncrement geom.Point `json:"positionIncrement"` // mm
	Comment           string     `json:"comment"`
}

// Inspect 通过 peer ID 在模型中找到来源条目并生成摘要。
// 来源条目已被删除时返回 false。
func Inspect(item Item, model *layout.Model) (Summary, bool) {
	if item == nil || model == nil {
		return Summary{}, false
	}
	peer, ok := model.Item(item.Peer())
	if !ok {
		return Summary{}, false
	}
	s := Summary{
		Type:              peer.Type.String(),
		PageOption:        peer.Page.String(),
		RepeatCount:       peer.RepeatCount,
		LabelIncrement:    peer.IncrementLabel,
		PositionIncrement: peer.Increment,
		Comment:           peer.Comment,
	}
	if t, ok := item.(*Text); ok {
		s.Text = t.Text
	}
	return s, true
}

// Rows returns the summary as label/value pairs in display order.
func (s Summary) Rows() [][2]string {
	inc := "(" + strconv.FormatFloat(s.PositionIncrement.X, 'f', -1, 64) + ", " +
		strconv.FormatFloat(s.PositionIncrement.Y, 'f', -1, 64) + ")"
	return [][2]string{
		{s.Type, s.Text},
		{"First Page Option", s.PageOption},
		{"Repeat Count", strconv.Itoa(s.RepeatCount)},
		{"Repeat Label Increment", strconv.Itoa(s.LabelIncrement)},
		{"Repeat Position Increment", inc},
		{"Comment", s.Comment},
	}
}
