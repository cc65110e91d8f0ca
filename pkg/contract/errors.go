package contract

import "errors"

// 最小错误分类；调用方使用 errors.Is 判定。
var (
	// ErrInvalidArgument: 参数冲突/越界、字节数格式错误、正则非法等（I/O 之前检出）。
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSourceUnreadable: 输入文件不存在或不可读。
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrOutputWriteFailed: 输出文件创建/写入失败（磁盘满、无权限、路径非法）。
	ErrOutputWriteFailed = errors.New("output write failed")
	// ErrPathInvalid: 输出名映射为无效/越界路径（例如启用 confine 时的 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
)
