package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ===============================
// Excel 报告
// ===============================

// Excel 单元格着色阈值（额外延迟，单位 ms）
const (
	excelGreenMs  = 10.0
	excelYellowMs = 25.0
)

// ExportExcel 导出多工作表的 Excel 报告
func ExportExcel(report *TestReport, outputDir string) (string, error) {
	reportDir := filepath.Join(outputDir, "reports")
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	timestamp := report.StartTime.Format("2006-01-02_15-04-05")
	filePath := filepath.Join(reportDir, fmt.Sprintf("latency_analysis_%s.xlsx", timestamp))

	records := report.Records()
	avgDelta, maxDelta, assessment, risk := overallAssessment(records)

	f := excelize.NewFile()
	defer f.Close()

	// Sheet 1: 总览
	summarySheet := "Executive Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", fmt.Errorf("创建工作表失败: %w", err)
	}
	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Test Date", report.StartTime.Format("2006-01-02")},
		{"Report Generated", report.EndTime.Format("2006-01-02 15:04:05")},
		{"Comparisons", len(records)},
		{"Average Additional Latency (ms)", fmt.Sprintf("%.1f", avgDelta)},
		{"Maximum Additional Latency (ms)", fmt.Sprintf("%.1f", maxDelta)},
		{"Overall Assessment", assessment},
		{"Risk Level", risk},
	}
	writeSheetRows(f, summarySheet, summaryRows)
	_ = f.SetColWidth(summarySheet, "A", "A", 32)
	_ = f.SetColWidth(summarySheet, "B", "B", 55)

	// Sheet 2: 详细结果
	detailSheet := "Detailed Results"
	if _, err := f.NewSheet(detailSheet); err != nil {
		return "", fmt.Errorf("创建工作表失败: %w", err)
	}
	detailRows := [][]interface{}{{
		"Environment", "Endpoint", "Old Avg (ms)", "New Avg (ms)",
		"Additional (ms)", "% Change", "Old P95 (ms)", "New P95 (ms)",
		"Successful (Old)", "Successful (New)", "Status",
	}}
	for _, r := range records {
		oldTotal := r.Old.SuccessCount + r.Old.FailCount
		newTotal := r.New.SuccessCount + r.New.FailCount
		if !r.Comparable {
			detailRows = append(detailRows, []interface{}{
				r.Environment, r.EndpointName, "-", "-", "-", "-", "-", "-",
				fmt.Sprintf("%d/%d", r.Old.SuccessCount, oldTotal),
				fmt.Sprintf("%d/%d", r.New.SuccessCount, newTotal),
				"Unavailable",
			})
			continue
		}
		detailRows = append(detailRows, []interface{}{
			r.Environment, r.EndpointName,
			round1(r.Old.MeanMs), round1(r.New.MeanMs),
			round1(r.Delta.Mean), formatPercent(r, "mean"),
			round1(r.Old.P95Ms), round1(r.New.P95Ms),
			fmt.Sprintf("%d/%d", r.Old.SuccessCount, oldTotal),
			fmt.Sprintf("%d/%d", r.New.SuccessCount, newTotal),
			r.Status,
		})
	}
	writeSheetRows(f, detailSheet, detailRows)
	_ = f.SetColWidth(detailSheet, "A", "K", 16)

	// 根据额外延迟着色（绿: 优秀，黄: 可接受）
	greenStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"90EE90"}, Pattern: 1},
	})
	yellowStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF90"}, Pattern: 1},
	})
	for i, r := range records {
		if !r.Comparable {
			continue
		}
		cell := fmt.Sprintf("E%d", i+2)
		if r.Delta.Mean < excelGreenMs {
			_ = f.SetCellStyle(detailSheet, cell, cell, greenStyle)
		} else if r.Delta.Mean < excelYellowMs {
			_ = f.SetCellStyle(detailSheet, cell, cell, yellowStyle)
		}
	}

	// Sheet 3: URL 映射
	mappingSheet := "URL Mapping"
	if _, err := f.NewSheet(mappingSheet); err != nil {
		return "", fmt.Errorf("创建工作表失败: %w", err)
	}
	mappingRows := [][]interface{}{{"Environment", "Old URL (Direct)", "New URL (Edge Gateway)"}}
	seen := make(map[string]bool)
	for _, r := range records {
		key := r.Environment + "|" + r.OldURL + "|" + r.NewURL
		if seen[key] {
			continue
		}
		seen[key] = true
		mappingRows = append(mappingRows, []interface{}{r.Environment, r.OldURL, r.NewURL})
	}
	writeSheetRows(f, mappingSheet, mappingRows)
	_ = f.SetColWidth(mappingSheet, "A", "A", 14)
	_ = f.SetColWidth(mappingSheet, "B", "C", 55)

	// Sheet 4: 指标对比
	metricsSheet := "Performance Metrics"
	if _, err := f.NewSheet(metricsSheet); err != nil {
		return "", fmt.Errorf("创建工作表失败: %w", err)
	}
	metricsRows := [][]interface{}{{
		"Environment", "Endpoint", "Metric", "Old (ms)", "New (ms)", "Difference (ms)", "% Change",
	}}
	for _, r := range records {
		if !r.Comparable {
			continue
		}
		metrics := []struct {
			label    string
			old, new float64
			delta    float64
			key      string
		}{
			{"Mean Latency", r.Old.MeanMs, r.New.MeanMs, r.Delta.Mean, "mean"},
			{"Median Latency", r.Old.MedianMs, r.New.MedianMs, r.Delta.Median, "median"},
			{"P95 Latency", r.Old.P95Ms, r.New.P95Ms, r.Delta.P95, "p95"},
			{"P99 Latency", r.Old.P99Ms, r.New.P99Ms, r.Delta.P99, "p99"},
		}
		for _, m := range metrics {
			metricsRows = append(metricsRows, []interface{}{
				r.Environment, r.EndpointName, m.label,
				round1(m.old), round1(m.new), round1(m.delta),
				formatPercent(r, m.key),
			})
		}
	}
	writeSheetRows(f, metricsSheet, metricsRows)
	_ = f.SetColWidth(metricsSheet, "A", "G", 16)

	// Sheet 5: 建议
	recommendationsSheet := "Recommendations"
	if _, err := f.NewSheet(recommendationsSheet); err != nil {
		return "", fmt.Errorf("创建工作表失败: %w", err)
	}
	recommendationRows := [][]interface{}{{"Priority", "Recommendation", "Rationale"}}
	for _, row := range buildRecommendations(avgDelta, maxDelta) {
		recommendationRows = append(recommendationRows, []interface{}{row[0], row[1], row[2]})
	}
	writeSheetRows(f, recommendationsSheet, recommendationRows)
	_ = f.SetColWidth(recommendationsSheet, "A", "A", 10)
	_ = f.SetColWidth(recommendationsSheet, "B", "C", 55)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("保存 Excel 文件失败: %w", err)
	}

	return filePath, nil
}

// writeSheetRows 逐行写入工作表
func writeSheetRows(f *excelize.File, sheet string, rows [][]interface{}) {
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		_ = f.SetSheetRow(sheet, cell, &row)
	}
}

// round1 保留一位小数，让表格里的数值不带长尾
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
