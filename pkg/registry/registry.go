package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"splitkit/pkg/contract"
	rfs "splitkit/plugins/reader/filesystem"
	sbc "splitkit/plugins/splitter/bytecount"
	scc "splitkit/plugins/splitter/chunkcount"
	slc "splitkit/plugins/splitter/linecount"
	spt "splitkit/plugins/splitter/pattern"
	wdry "splitkit/plugins/writer/dryrun"
	wfs "splitkit/plugins/writer/filesystem"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewSplitter 工厂签名：接收已校验的拆分方式与原样 JSON Options。
type NewSplitter func(m contract.Method, raw json.RawMessage) (contract.Splitter, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 文件系统/STDIN Reader
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// noOptions 用于不接受任何选项的拆分器，仍拒绝未知字段。
type noOptions struct{}

// Splitter 工厂注册表，键为拆分方式。
var Splitter = map[contract.MethodKind]NewSplitter{
	contract.KindLineCount: func(m contract.Method, raw json.RawMessage) (contract.Splitter, error) {
		v, ok := m.(contract.ByLineCount)
		if !ok {
			return nil, mismatch(contract.KindLineCount, m)
		}
		if err := strictUnmarshal(raw, &noOptions{}); err != nil {
			return nil, err
		}
		return slc.New(v.N)
	},
	contract.KindChunkCount: func(m contract.Method, raw json.RawMessage) (contract.Splitter, error) {
		v, ok := m.(contract.ByChunkCount)
		if !ok {
			return nil, mismatch(contract.KindChunkCount, m)
		}
		if err := strictUnmarshal(raw, &noOptions{}); err != nil {
			return nil, err
		}
		return scc.New(v.N)
	},
	contract.KindByteCount: func(m contract.Method, raw json.RawMessage) (contract.Splitter, error) {
		v, ok := m.(contract.ByByteCount)
		if !ok {
			return nil, mismatch(contract.KindByteCount, m)
		}
		if err := strictUnmarshal(raw, &noOptions{}); err != nil {
			return nil, err
		}
		return sbc.New(v.N)
	},
	// pattern: re2 / regexp2，可选 match_timeout_ms
	contract.KindPattern: func(m contract.Method, raw json.RawMessage) (contract.Splitter, error) {
		v, ok := m.(contract.ByPattern)
		if !ok {
			return nil, mismatch(contract.KindPattern, m)
		}
		var opts spt.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return spt.New(v, &opts)
	},
}

func mismatch(want contract.MethodKind, m contract.Method) error {
	return fmt.Errorf("%w: splitter %q got method %T", contract.ErrInvalidArgument, want, m)
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 文件系统 Writer（覆盖写/原子替换可配置）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
	// dryrun: 仅打印计划输出名与大小
	"dryrun": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wdry.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wdry.New(&opts), nil
	},
}
