// Package suffix 负责输出文件名后缀的生成。
//
// 两种方案：
//   - 字母：两位 a..z 编码（aa, ab, …, az, ba, …, zz），长度大于 2 时左侧以 'a' 补齐；
//   - 数字：file_number-1 的十进制，左侧补 0 到固定宽度。
//
// 纯函数实现，无全局计数器；序号由调用方维护。
package suffix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"

	// MinLength/MaxLength: 后缀长度允许范围（闭区间）。
	MinLength = 2
	MaxLength = 13
	// DefaultLength: 未配置时的后缀长度。
	DefaultLength = 2

	// codeLength: 字母方案中真正编码序号的字符数，其余位为 'a' 填充。
	codeLength = 2
	// AlphaCapacity: 字母方案可表示的最大文件数（26×26）。
	AlphaCapacity = len(alphabet) * len(alphabet)
)

// ErrExhausted: 序号超出当前方案可表示的范围。
var ErrExhausted = errors.New("suffix exhausted")

// Suffix 返回第 n 个输出文件（1 起）的后缀，长度恰为 length。
func Suffix(n, length int, numeric bool) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("suffix: file number must be >= 1, got %d", n)
	}
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("suffix: length must be in [%d,%d], got %d", MinLength, MaxLength, length)
	}
	if numeric {
		return numericSuffix(n, length)
	}
	return alphaSuffix(n, length)
}

func numericSuffix(n, length int) (string, error) {
	s := strconv.Itoa(n - 1)
	if len(s) > length {
		return "", fmt.Errorf("%w: file number %d needs more than %d digits", ErrExhausted, n, length)
	}
	return strings.Repeat("0", length-len(s)) + s, nil
}

func alphaSuffix(n, length int) (string, error) {
	if n > AlphaCapacity {
		return "", fmt.Errorf("%w: file number %d exceeds %d", ErrExhausted, n, AlphaCapacity)
	}
	base := len(alphabet)
	// 26 的整数倍归属上一组（26→az，而非 ba）
	first := n / base
	if n%base == 0 {
		first--
	}
	second := n - first*base - 1

	var b strings.Builder
	b.Grow(length)
	b.WriteString(strings.Repeat("a", length-codeLength))
	b.WriteByte(alphabet[first])
	b.WriteByte(alphabet[second])
	return b.String(), nil
}

// Capacity 返回给定方案下可生成的文件名数量上限。
// 数字方案为 10^length；字母方案固定为 676（与补齐长度无关）。
func Capacity(length int, numeric bool) int64 {
	if length < MinLength || length > MaxLength {
		return 0
	}
	if !numeric {
		return int64(AlphaCapacity)
	}
	c := int64(1)
	for i := 0; i < length; i++ {
		c *= 10
	}
	return c
}

// Namer 组合前缀与后缀规则，生成完整输出文件名。
type Namer struct {
	Prefix  string
	Length  int
	Numeric bool
}

// Name 返回第 n 个输出文件名（prefix + suffix）。
func (nm Namer) Name(n int) (string, error) {
	sfx, err := Suffix(n, nm.Length, nm.Numeric)
	if err != nil {
		return "", err
	}
	return nm.Prefix + sfx, nil
}
