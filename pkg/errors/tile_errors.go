package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies every failure the slicer, the joiner and the I/O edges can report.
type Kind uint8

const (
	Unknown Kind = iota
	MissingGridSpecification
	InvalidTileCount
	InvalidGrid
	ImageTooSmall
	DecodeError
	ParseError
	EmptyTileSet
	InconsistentGrid
	OverlappingTiles
	EncodeError
	IOError
)

var kindNames = map[Kind]string{
	Unknown:                  "Unknown",
	MissingGridSpecification: "MissingGridSpecification",
	InvalidTileCount:         "InvalidTileCount",
	InvalidGrid:              "InvalidGrid",
	ImageTooSmall:            "ImageTooSmall",
	DecodeError:              "DecodeError",
	ParseError:               "ParseError",
	EmptyTileSet:             "EmptyTileSet",
	InconsistentGrid:         "InconsistentGrid",
	OverlappingTiles:         "OverlappingTiles",
	EncodeError:              "EncodeError",
	IOError:                  "IOError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Sentinels usable with errors.Is; any *Error of the same kind matches.
var (
	ErrMissingGridSpecification = &Error{Kind: MissingGridSpecification}
	ErrInvalidTileCount         = &Error{Kind: InvalidTileCount}
	ErrInvalidGrid              = &Error{Kind: InvalidGrid}
	ErrImageTooSmall            = &Error{Kind: ImageTooSmall}
	ErrDecode                   = &Error{Kind: DecodeError}
	ErrParse                    = &Error{Kind: ParseError}
	ErrEmptyTileSet             = &Error{Kind: EmptyTileSet}
	ErrInconsistentGrid         = &Error{Kind: InconsistentGrid}
	ErrOverlappingTiles         = &Error{Kind: OverlappingTiles}
	ErrEncode                   = &Error{Kind: EncodeError}
	ErrIO                       = &Error{Kind: IOError}
)

type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "compute grid" or "write tile image_00_01.png".
	Op  string
	Msg string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with a kind and the failing operation. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
