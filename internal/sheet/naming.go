package sheet

import "strings"

const outputPrefix = "impostor-"

// OutputName derives the default output file name from the longest common
// leading run of the input names: the last path segment of the common part
// gets the impostor prefix and a .png suffix. Names split on '/' because
// they name files the capture tool wrote, not OS-specific paths.
func OutputName(inputs []string) string {
	common := commonPrefix(inputs)
	parts := strings.Split(common, "/")
	parts[len(parts)-1] = outputPrefix + parts[len(parts)-1]
	return strings.Join(parts, "/") + ".png"
}

func commonPrefix(inputs []string) string {
	if len(inputs) == 0 {
		return ""
	}
	prefix := inputs[0]
	for _, s := range inputs[1:] {
		n := commonLen(prefix, s)
		prefix = prefix[:n]
	}
	return prefix
}

func commonLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
