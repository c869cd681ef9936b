package thread

import (
	"github.com/zcamb1/S-Connect-sub000/internal/model"
)

// Kind 评论在两级结构中的角色
type Kind int

const (
	KindRoot Kind = iota
	KindReply
)

// KindOf 根据线索字段判定评论角色
func KindOf(c *model.Comment) Kind {
	if c.IsRoot() {
		return KindRoot
	}
	return KindReply
}

// Group 一条一级评论和它名下的全部回复，回复保持入参顺序
type Group struct {
	Root    *model.Comment
	Replies []*model.Comment
}

// ResolveRootID 计算新回复应落到的 RootID。
// 父评论本身是一级评论时取父评论 ID，否则继承父评论的 RootID，
// 保证无论回复嵌套多深，存储层永远只有两级。
func ResolveRootID(parent *model.Comment) uint64 {
	if parent.IsRoot() {
		return parent.ID
	}
	return parent.RootID
}

// BuildGroups 把按线索顺序排好的评论行组装成分组结构。
// 输入顺序即输出顺序：一级评论按自身创建顺序，回复紧随所属一级评论。
// 找不到一级评论的回复属于数据完整性问题，整组剔除并返回其 ID 供上层记录。
func BuildGroups(rows []*model.Comment) ([]*Group, []uint64) {
	groups := make([]*Group, 0, len(rows))
	index := make(map[uint64]*Group, len(rows))
	var orphans []uint64

	for _, row := range rows {
		if KindOf(row) == KindRoot {
			g := &Group{Root: row}
			index[row.ID] = g
			groups = append(groups, g)
			continue
		}

		g, ok := index[row.RootID]
		if !ok {
			orphans = append(orphans, row.ID)
			continue
		}
		g.Replies = append(g.Replies, row)
	}

	return groups, orphans
}

// Flatten 把分组结构还原成单一平铺列表，是 BuildGroups 的逆操作：
// 每条记录的 (ID, RootID, ParentID) 三元组保持不变。
func Flatten(groups []*Group) []*model.Comment {
	var flat []*model.Comment
	for _, g := range groups {
		flat = append(flat, g.Root)
		flat = append(flat, g.Replies...)
	}
	return flat
}
