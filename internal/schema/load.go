package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"
)

// Error code constants.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No schema files found
	ErrCodeLoadFailed  = "E004" // File read or parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Document validation errors
	ErrCodeInvalidDocument = "E101" // Malformed declaration
	ErrCodeUnknownType     = "E102" // Field type does not resolve
	ErrCodeDuplicateName   = "E103" // Type declared twice
	ErrCodeInvalidBase     = "E104" // Base is not an object type
	ErrCodeBaseCycle       = "E105" // Base types form a cycle
	ErrCodeInvalidEnum     = "E106" // Enum without members or with a bad underlying type
	ErrCodeInvalidData     = "E110" // Data row does not match its type
)

// LoadError represents an error that occurred while loading a schema or a
// data file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // source position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode returns the code of a LoadError in err's chain.
func ErrorCode(err error) (string, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code, true
	}
	return "", false
}

// Load reads a schema from path: a .yaml/.yml file, a .cue file, or a
// directory holding one CUE package.
func Load(path string) (*Schema, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// LoadDocument parses the schema at path without building its types.
func LoadDocument(path string) (*Document, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema: %v", err)}
	}
	if info.IsDir() {
		files, err := FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
		return loadCUE(path, ".")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading schema: %v", err)}
		}
		return ParseYAML(path, data)
	case ".cue":
		return loadCUE(filepath.Dir(path), "./"+filepath.Base(path))
	default:
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("unsupported schema file %s: want .yaml, .yml or .cue", path)}
	}
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
