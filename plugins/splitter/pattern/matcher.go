package pattern

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"

	"splitkit/pkg/contract"
)

// 支持的正则引擎名。
const (
	EngineRE2     = "re2"
	EngineRegexp2 = "regexp2"
)

// Matcher 判断一行是否为分界行。
type Matcher interface {
	Match(line string) (bool, error)
}

type re2Matcher struct{ re *regexp.Regexp }

func (m re2Matcher) Match(line string) (bool, error) { return m.re.MatchString(line), nil }

// regexp2 为回溯引擎，支持前后断言；可能超时，故 Match 返回 error。
type backtrackMatcher struct{ re *regexp2.Regexp }

func (m backtrackMatcher) Match(line string) (bool, error) { return m.re.MatchString(line) }

// Compile 按引擎名编译表达式；空引擎名视为 re2。
// 编译失败与未知引擎均包装为 ErrInvalidArgument。
func Compile(expr, engine string, timeout time.Duration) (Matcher, error) {
	switch engine {
	case "", EngineRE2:
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pattern: %w", contract.ErrInvalidArgument, err)
		}
		return re2Matcher{re: re}, nil
	case EngineRegexp2:
		re, err := regexp2.Compile(expr, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pattern: %w", contract.ErrInvalidArgument, err)
		}
		if timeout > 0 {
			re.MatchTimeout = timeout
		}
		return backtrackMatcher{re: re}, nil
	default:
		return nil, fmt.Errorf("%w: unknown regex engine %q", contract.ErrInvalidArgument, engine)
	}
}
