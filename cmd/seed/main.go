package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ikkim/shopp-backend/config"
	"github.com/ikkim/shopp-backend/internal/app/service"
	"github.com/ikkim/shopp-backend/internal/db"
	apperrors "github.com/ikkim/shopp-backend/internal/errors"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: go run cmd/seed/main.go <xlsx_file_path> [--yes]")
		os.Exit(2)
	}

	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && (os.Args[2] == "--yes" || os.Args[2] == "-y")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.App.Environment == "development",
	})

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	inputs, skipped, err := readItemsFromXLSX(filePath)
	if err != nil {
		logger.Fatal("Failed to read XLSX", err, map[string]interface{}{
			"path": filePath,
		})
	}
	fmt.Printf("Total items to import: %d (skipped rows: %d)\n", len(inputs), skipped)
	if len(inputs) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	// 사용자 확인
	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	items, err := service.NewItemService(persistence.NewManager(db.GetDB())).RegisterAll(context.Background(), inputs)
	if err != nil {
		info := apperrors.ParseError(err, "seed items")
		logger.Fatal("Failed to import items", err, map[string]interface{}{
			"code":    info.Code,
			"message": info.Message,
		})
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total items imported: %d\n", len(items))
}

// readItemsFromXLSX reads the first sheet. The first row is a header; the
// columns are name, price, detail and stock. Rows without a name or with a
// malformed number are skipped and counted.
func readItemsFromXLSX(filePath string) ([]service.ItemInput, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var inputs []service.ItemInput
	skipped := 0
	seen := make(map[string]bool) // 중복 상품명 제거용

	// 첫 행은 헤더이므로 스킵
	for _, row := range rows[1:] {
		if len(row) < 4 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		price, priceErr := parseNumber(row[1])
		stock, stockErr := parseNumber(row[3])
		if name == "" || priceErr != nil || stockErr != nil || seen[name] {
			skipped++
			continue
		}
		seen[name] = true

		inputs = append(inputs, service.ItemInput{
			Name:        name,
			Price:       price,
			Detail:      strings.TrimSpace(row[2]),
			StockNumber: stock,
		})
	}

	return inputs, skipped, nil
}

// parseNumber accepts values such as "10000" and "10,000".
func parseNumber(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}
