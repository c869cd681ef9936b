package util

import (
	"regexp"
)

// mentionRegex 匹配 @ 后面的点分用户名，例如 @jane.doe
var mentionRegex = regexp.MustCompile(`@([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*)`)

// MentionCandidate 评论内容中扫描出的一个 @ 候选
type MentionCandidate struct {
	Username string
	Position int // @ 在内容中的字节偏移
}

// ExtractMentions 从评论内容中按出现顺序扫描 @ 候选。
// 纯函数，不做账号解析和好友校验；同一用户名出现多次会产生多个候选。
func ExtractMentions(content string) []MentionCandidate {
	idx := mentionRegex.FindAllStringSubmatchIndex(content, -1)
	if len(idx) == 0 {
		return nil
	}

	candidates := make([]MentionCandidate, 0, len(idx))
	for _, m := range idx {
		// m[0] 是 @ 的偏移，m[2]:m[3] 是用户名分组
		candidates = append(candidates, MentionCandidate{
			Username: content[m[2]:m[3]],
			Position: m[0],
		})
	}
	return candidates
}
