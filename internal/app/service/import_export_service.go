package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/metrics"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrEmptyImportFile       = errors.New("import file has no header row")
	ErrMissingImportColumn   = errors.New("import file is missing a required column")
	ErrUnsupportedImportFile = errors.New("unsupported import file type")
)

const (
	ExportFileName  = "catalogo-export-v2"
	exportSheetName = "catalogo"
	maxImportErrors = 100
)

// CatalogColumns is the fixed import/export column order.
var CatalogColumns = []string{
	"name",
	"slug",
	"description",
	"status",
	"variant_sku",
	"variant_name",
	"variant_price",
	"variant_available",
	"variant_stock",
}

var requiredImportColumns = []string{"name", "slug"}

// truthyTokens are the only values read as an available variant.
var truthyTokens = map[string]bool{
	"1":    true,
	"true": true,
	"sí":   true,
	"si":   true,
	"yes":  true,
}

// ImportResult aggregates one import run. Errors is capped; the counts are not.
type ImportResult struct {
	OK     int      `json:"ok"`
	Fail   int      `json:"fail"`
	Errors []string `json:"errors"`
}

func (r *ImportResult) addError(row int, msg string) {
	r.Fail++
	if len(r.Errors) < maxImportErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("Fila %d: %s", row, msg))
	}
}

type ImportExportService interface {
	Import(fileName string, r io.Reader) (*ImportResult, error)
	ImportCSV(r io.Reader) (*ImportResult, error)
	ImportXLSX(r io.Reader) (*ImportResult, error)
	ExportCSV(w io.Writer) error
	ExportXLSX(w io.Writer) error
}

type importExportService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
}

func NewImportExportService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
) ImportExportService {
	return &importExportService{
		db:          db,
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

// Import dispatches on the file extension.
func (s *importExportService) Import(fileName string, r io.Reader) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", "":
		return s.ImportCSV(r)
	case ".xlsx":
		return s.ImportXLSX(r)
	}
	return nil, ErrUnsupportedImportFile
}

func (s *importExportService) ImportCSV(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return s.importRecords(records)
}

func (s *importExportService) ImportXLSX(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyImportFile
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return s.importRecords(records)
}

// importRow is a validated data row.
type importRow struct {
	product model.Product
	variant *model.Variant
}

func (s *importExportService) importRecords(records [][]string) (*ImportResult, error) {
	if len(records) == 0 {
		return nil, ErrEmptyImportFile
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredImportColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingImportColumn, col)
		}
	}

	result := &ImportResult{Errors: []string{}}
	rowNum := 0
	for _, record := range records[1:] {
		if blankRecord(record) {
			continue
		}
		rowNum++
		get := func(col string) string {
			pos, ok := index[col]
			if !ok || pos >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[pos])
		}

		row, msg := parseImportRow(get)
		if msg != "" {
			result.addError(rowNum, msg)
			continue
		}
		if err := s.applyRow(row); err != nil {
			logger.Warn("Import row failed", map[string]interface{}{
				"row":   rowNum,
				"slug":  row.product.Slug,
				"error": err.Error(),
			})
			result.addError(rowNum, "no se pudo guardar: "+err.Error())
			continue
		}
		result.OK++
	}

	metrics.ObserveImport(result.OK, result.Fail)
	logger.Info("Catalog import finished", map[string]interface{}{
		"ok":   result.OK,
		"fail": result.Fail,
	})
	return result, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseImportRow validates one row; a non-empty message rejects it.
func parseImportRow(get func(string) string) (*importRow, string) {
	name := get("name")
	slug := get("slug")
	if name == "" {
		return nil, "falta el nombre"
	}
	if slug == "" {
		return nil, "falta el slug"
	}
	if !util.IsSlug(slug) {
		return nil, fmt.Sprintf("slug inválido: %s", slug)
	}
	status, ok := model.ParseProductStatus(get("status"))
	if !ok {
		return nil, fmt.Sprintf("estado inválido: %s", get("status"))
	}

	row := &importRow{product: model.Product{
		Slug:        slug,
		Name:        name,
		Description: get("description"),
		Status:      status,
	}}

	sku := get("variant_sku")
	if sku == "" {
		return row, ""
	}

	var cents int64
	if raw := get("variant_price"); raw != "" {
		parsed, err := util.ParsePriceToCents(raw)
		if err != nil {
			return nil, fmt.Sprintf("precio inválido: %q", raw)
		}
		cents = parsed
	}
	var err error
	stock := 0
	if raw := get("variant_stock"); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return nil, fmt.Sprintf("stock inválido: %q", raw)
		}
	}
	variantName := get("variant_name")
	if variantName == "" {
		variantName = sku
	}

	row.variant = &model.Variant{
		SKU:         sku,
		Name:        variantName,
		PriceCents:  cents,
		IsAvailable: ParseAvailability(get("variant_available")),
		Stock:       stock,
	}
	return row, ""
}

// ParseAvailability reads the availability column; anything outside the
// truthy token set is unavailable.
func ParseAvailability(raw string) bool {
	return truthyTokens[strings.ToLower(strings.TrimSpace(raw))]
}

// applyRow upserts the product by slug and its variant by SKU atomically.
func (s *importExportService) applyRow(row *importRow) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		productID, err := s.productRepo.WithTx(tx).UpsertBySlug(&row.product)
		if err != nil {
			return err
		}
		if row.variant == nil {
			return nil
		}
		row.variant.ProductID = productID
		return s.variantRepo.WithTx(tx).UpsertBySKU(row.variant)
	})
}

// exportRows renders every product as one row per variant, or a single
// row with blank variant fields.
func (s *importExportService) exportRows() ([][]string, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	variants, err := s.variantRepo.FindByProductIDs(ids)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[uint][]model.Variant, len(products))
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}

	rows := make([][]string, 0, len(products)+len(variants))
	for _, p := range products {
		base := []string{p.Name, p.Slug, p.Description, string(p.Status)}
		pv := byProduct[p.ID]
		if len(pv) == 0 {
			rows = append(rows, append(base, "", "", "", "", ""))
			continue
		}
		for _, v := range pv {
			row := append(append([]string{}, base...),
				v.SKU,
				v.Name,
				util.FormatCents(v.PriceCents),
				strconv.FormatBool(v.IsAvailable),
				strconv.Itoa(v.Stock),
			)
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *importExportService) ExportCSV(w io.Writer) error {
	rows, err := s.exportRows()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(CatalogColumns); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}

	logger.Info("Catalog exported", map[string]interface{}{
		"format": "csv",
		"rows":   len(rows),
	})
	return writer.Error()
}

func (s *importExportService) ExportXLSX(w io.Writer) error {
	rows, err := s.exportRows()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(CatalogColumns))
	for i, col := range CatalogColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return err
		}
	}

	logger.Info("Catalog exported", map[string]interface{}{
		"format": "xlsx",
		"rows":   len(rows),
	})
	return f.Write(w)
}
