// Package errs 定义排版与输出流水线共用的错误类型。
//
// 所有可失败的步骤都返回 *Error（或包裹了 *Error 的错误），调用方用
// errors.Is(err, errs.ErrConfig) 之类的哨兵判断错误类别。
package errs

import (
	"errors"
	"fmt"
)

// Kind 是错误类别。
type Kind int

const (
	// Config 表示输入或配置非法：段落数量不一致、几何参数非有限或非正等。
	Config Kind = iota + 1
	// Resource 表示缺少必需资源，例如某一文种没有可用字体。
	Resource
	// Format 表示 PDF 对象图操作失败，例如页树字典结构损坏。
	Format
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Resource:
		return "resource"
	case Format:
		return "format"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// 用于 errors.Is 的类别哨兵。
var (
	ErrConfig   = &Error{Kind: Config}
	ErrResource = &Error{Kind: Resource}
	ErrFormat   = &Error{Kind: Format}
)

// Error 携带类别、发生位置与底层原因。
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让同类别的错误与哨兵相等。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Err != nil {
		return e == t
	}
	return e.Kind == t.Kind
}

// E 构造指定类别的错误。
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Configf 构造配置错误。
func Configf(op, format string, args ...any) error {
	return &Error{Kind: Config, Op: op, Err: fmt.Errorf(format, args...)}
}

// Resourcef 构造资源错误。
func Resourcef(op, format string, args ...any) error {
	return &Error{Kind: Resource, Op: op, Err: fmt.Errorf(format, args...)}
}

// Formatf 构造对象图格式错误。
func Formatf(op, format string, args ...any) error {
	return &Error{Kind: Format, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf 返回错误链中第一个 *Error 的类别，没有时返回 0。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
