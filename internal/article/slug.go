package article

import "strings"

// Parameterize は文字列をURLセーフなslugに変換する。
// 英数字以外はハイフンに置換し、連続・先頭・末尾のハイフンは取り除く。
func Parameterize(s string) string {
	var b strings.Builder
	lastHyphen := true // 先頭のハイフンを抑制する

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
