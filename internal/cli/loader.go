package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/bibkit/bibkit/internal/csl"
	"github.com/bibkit/bibkit/internal/library"
	"github.com/bibkit/bibkit/internal/styleload"
)

// Error codes shared across commands. Codes keep scripted callers
// stable while messages stay free to improve.
const (
	ErrCodeGeneric      = "E001" // unknown error
	ErrCodeNotFound     = "E002" // input path not found
	ErrCodeStyleCompile = "E003" // style compile failed
	ErrCodeLibraryParse = "E004" // entry library parse failed
	ErrCodeLocaleParse  = "E005" // locale parse failed
	ErrCodeWriteFailed  = "E006" // output file write failed
	ErrCodeNoScenarios  = "E007" // no scenario files found
	ErrCodeBadCite      = "E008" // malformed --cite spec
	ErrCodeSession      = "E009" // session log error
)

// LoadError is a classified input-loading failure, carrying the CUE
// position when the underlying compile error has one.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// loadStyle compiles a CUE style file, classifying the failure mode.
func loadStyle(path string) (*csl.Style, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("style file not found: %s", path)}
	}

	style, err := styleload.LoadFile(path)
	if err != nil {
		var compileErr *styleload.CompileError
		if errors.As(err, &compileErr) {
			return nil, &LoadError{
				Code:    ErrCodeStyleCompile,
				Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
				Pos:     compileErr.Pos,
			}
		}
		return nil, &LoadError{Code: ErrCodeStyleCompile, Message: err.Error()}
	}
	return style, nil
}

// loadLibrary parses a YAML entry library.
func loadLibrary(path string) (*csl.Library, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("entry library not found: %s", path)}
	}

	lib, err := library.LoadEntries(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLibraryParse, Message: err.Error()}
	}
	return lib, nil
}

// loadLocale parses a YAML locale overlay; an empty path means the
// built-in English locale.
func loadLocale(path string) (*csl.Locale, error) {
	if path == "" {
		return csl.EnglishLocale(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("locale file not found: %s", path)}
	}

	locale, err := library.LoadLocale(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLocaleParse, Message: err.Error()}
	}
	return locale, nil
}

// outputLoadError reports a load failure through the formatter and
// returns the matching exit error.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		code := ExitFailure
		if loadErr.Code == ErrCodeNotFound {
			code = ExitCommandError
		}
		return NewExitError(code, loadErr.Message)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitFailure, err.Error())
}
