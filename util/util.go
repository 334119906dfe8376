package util

import (
	"bytes"
	"strings"
)

// return a string like a.b.c, empty parts are skipped.
func BuildDotString(strings ...string) string {
	bf := bytes.Buffer{}
	for _, str := range strings {
		if str == "" {
			continue
		}
		if bf.Len() > 0 {
			bf.WriteByte('.')
		}
		bf.WriteString(str)
	}
	return bf.String()
}

// SplitDotString is the reverse of BuildDotString: "a.b.c" -> [a b c]. Surrounding spaces and empty parts are dropped.
func SplitDotString(str string) []string {
	var ret []string
	for _, part := range strings.Split(str, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ret = append(ret, part)
	}
	return ret
}

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
