package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/reondaze-a/automated-wave-priority-sorting/internal/errors"
)

// zipMagic opens every .xlsx/.xlsm file (they are zip archives).
var zipMagic = []byte("PK\x03\x04")

// workbookExtensions lists the formats excelize can read.
var workbookExtensions = map[string]bool{".xlsx": true, ".xlsm": true}

// exportExtensions lists the summary export formats.
var exportExtensions = map[string]bool{".csv": true, ".xlsx": true}

// FileValidator checks input and output files before the pipeline opens them.
// Failures are *errors.AppError values of type VALIDATION.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s does not exist", path))
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("cannot stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile checks that path is a readable workbook on disk
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("file %s is not readable", path), err)
	}
	defer file.Close()

	return v.ValidateWorkbook(path, file)
}

// ValidateWorkbook checks an uploaded or opened workbook by name and
// leading bytes. r is read from offset zero and left unconsumed.
func (v *FileValidator) ValidateWorkbook(name string, r io.ReaderAt) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file", slog.String("file", name))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", base))
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !workbookExtensions[ext] {
		v.logger.Warn("File is not a supported workbook",
			slog.String("file", name),
			slog.String("extension", ext))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not an .xlsx or .xlsm workbook", base))
	}

	head := make([]byte, len(zipMagic))
	n, err := r.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("cannot read %s", base), err)
	}
	if !bytes.Equal(head[:n], zipMagic) {
		v.logger.Warn("Workbook signature mismatch", slog.String("file", name))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not a valid workbook", base))
	}
	return nil
}

// ValidateOutputFile checks the export format of path and that its
// directory exists or can be created.
func (v *FileValidator) ValidateOutputFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !exportExtensions[ext] {
		return apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q: use .csv or .xlsx", ext))
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("cannot create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
