// Package bytesize 解析形如 "100K"/"1M"/"1G" 的字节数参数。
package bytesize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidByteSize: 单位或数值部分非法。
var ErrInvalidByteSize = errors.New("invalid byte size")

// 十进制倍数（非 1024 幂）。
var multipliers = map[byte]int64{
	'k': 1_000,
	'm': 1_000_000,
	'g': 1_000_000_000,
}

// Parse 将 raw 解析为字节数。
// 规则：末字符为单位（k/m/g，大小写不敏感），其余字符为非负十进制整数。
func Parse(raw string) (int64, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidByteSize, raw)
	}
	unit := raw[len(raw)-1]
	if unit >= 'A' && unit <= 'Z' {
		unit += 'a' - 'A'
	}
	mult, ok := multipliers[unit]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q in %q", ErrInvalidByteSize, raw[len(raw)-1:], raw)
	}
	digits := raw[:len(raw)-1]
	// base=10：仅接受纯数字，拒绝符号与小数
	n, err := strconv.ParseUint(digits, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("%w: bad magnitude %q", ErrInvalidByteSize, digits)
	}
	if int64(n) > math.MaxInt64/mult {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidByteSize, raw)
	}
	return int64(n) * mult, nil
}
