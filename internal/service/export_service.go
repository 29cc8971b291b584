package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ruralwork/config"
	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	"ruralwork/internal/stats"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// 工作表名称
const (
	SheetSummary    = "个人得分汇总"
	SheetDetail     = "详细评分记录"
	SheetAnalysis   = "统计分析"
	SheetDepartment = "部门排名"
	SheetAttendance = "考勤得分"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response。
type ExportService interface {
	// ExportEvaluations 年度互评工作簿；year 为空时导出全部年度
	ExportEvaluations(ctx context.Context, year string) (*bytes.Buffer, string, error)
	// ExportAttendance 考勤得分工作簿
	ExportAttendance(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.AttendanceConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.AttendanceConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportEvaluations 导出年度互评汇总
// ═══════════════════════════════════════════════════════════
//
// 工作表：个人得分汇总 / 详细评分记录 / 统计分析 / 部门排名

func (s *exportService) ExportEvaluations(ctx context.Context, year string) (*bytes.Buffer, string, error) {
	ds, err := load(ctx, s.repo, year)
	if err != nil {
		s.logger.Error("读取导出数据失败", zap.String("year", year), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &sheetWriter{f: f}
	w.sheet(SheetSummary, summaryRows(stats.Leaderboard(ds.evaluations, ds.users)))
	w.sheet(SheetDetail, detailRows(ds.evaluations, ds.users))
	w.sheet(SheetAnalysis, analysisRows(ds.evaluations, ds.users))
	w.sheet(SheetDepartment, departmentRows(stats.DepartmentRollup(ds.evaluations, ds.users)))
	if w.err != nil {
		s.logger.Error("生成互评工作簿失败", zap.Error(w.err))
		return nil, "", ErrExportGenerateFail
	}

	label := year
	if label == "" {
		label = "全部年度"
	}
	return s.finish(f, fmt.Sprintf("年度互评汇总_%s.xlsx", label))
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance 导出考勤得分
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportAttendance(ctx context.Context) (*bytes.Buffer, string, error) {
	var (
		users  []model.User
		leaves []model.LeaveRequest
	)
	err := s.repo.Snapshot(ctx, func(tx *repository.Repository) error {
		var err error
		if users, err = tx.User.ListAll(ctx); err != nil {
			return err
		}
		leaves, err = tx.Leave.ListAll(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("读取考勤数据失败", zap.Error(err))
		return nil, "", err
	}

	board := stats.AttendanceBoard(users, leaves)
	rows := [][]any{{"排名", "姓名", "部门", "职位", "当前得分", "累计扣分", "事假次数", "事假天数"}}
	for _, b := range board {
		rows = append(rows, []any{
			b.Rank, b.Name, b.Department, b.Position,
			b.CurrentScore, b.TotalDeduction, b.PersonalLeaveCount, b.PersonalLeaveDays,
		})
	}
	o := stats.AttendanceSummary(board, s.cfg.BaseScore)
	rows = append(rows,
		[]any{},
		[]any{"平均分", o.AverageScore},
		[]any{"满分人数", o.FullScoreCount},
		[]any{"扣分人数", o.DeductedCount},
	)

	f := excelize.NewFile()
	defer f.Close()

	w := &sheetWriter{f: f}
	w.sheet(SheetAttendance, rows)
	if w.err != nil {
		s.logger.Error("生成考勤工作簿失败", zap.Error(w.err))
		return nil, "", ErrExportGenerateFail
	}
	return s.finish(f, fmt.Sprintf("考勤得分_%s.xlsx", s.now().Format("20060102")))
}

func (s *exportService) finish(f *excelize.File, filename string) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, filename, nil
}

// ── 工作表内容 ──

func summaryRows(ranked []stats.Summary) [][]any {
	header := []any{"排名", "姓名", "部门", "职位"}
	for _, l := range stats.DimensionLabels {
		header = append(header, l)
	}
	header = append(header, "总平均分", "评价人数")

	rows := [][]any{header}
	for _, r := range ranked {
		row := []any{r.Rank, r.Name, r.Department, r.Position}
		for _, v := range r.Averages.Values() {
			row = append(row, v)
		}
		rows = append(rows, append(row, r.TotalAverage, r.EvaluationCount))
	}
	return rows
}

func detailRows(records []model.Evaluation, users []model.User) [][]any {
	names := make(map[string]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].Name
	}

	header := []any{"评价人", "被评价人", "年度"}
	for _, l := range stats.DimensionLabels {
		header = append(header, l)
	}
	header = append(header, "总分", "评语", "提交时间")

	rows := [][]any{header}
	for i := range records {
		e := &records[i]
		row := []any{names[e.EvaluatorID], names[e.EvaluateeID], e.EvaluationYear}
		for _, v := range stats.ScoresOf(e).Values() {
			row = append(row, v)
		}
		rows = append(rows, append(row, stats.RecordTotal(e), e.Comment, formatTimePtr(e.CompletedAt)))
	}
	return rows
}

func analysisRows(records []model.Evaluation, users []model.User) [][]any {
	c := stats.CompletionOf(records, users)
	rows := [][]any{
		{"指标", "数值"},
		{"参评人数", c.Participants},
		{"已完成评价", c.Completed},
		{"应完成评价", c.Possible},
		{"完成率(%)", c.Rate},
		{},
		{"维度", "平均分"},
	}
	avg := stats.DimensionAverages(records).Values()
	for i, l := range stats.DimensionLabels {
		rows = append(rows, []any{l, avg[i]})
	}
	return rows
}

func departmentRows(depts []stats.DepartmentStat) [][]any {
	header := []any{"排名", "部门", "平均分", "被评人数", "评价次数"}
	for _, l := range stats.DimensionLabels {
		header = append(header, l)
	}

	rows := [][]any{header}
	for _, d := range depts {
		row := []any{d.Rank, d.Department, d.AverageScore, d.ParticipantCount, d.EvaluationCount}
		for _, v := range d.Averages.Values() {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

// sheetWriter 顺序写入多个工作表，记录第一个错误
type sheetWriter struct {
	f     *excelize.File
	count int
	err   error
}

func (w *sheetWriter) sheet(name string, rows [][]any) {
	if w.err != nil {
		return
	}
	// 第一个工作表复用默认的 Sheet1
	if w.count == 0 {
		w.err = w.f.SetSheetName(w.f.GetSheetName(0), name)
	} else {
		_, w.err = w.f.NewSheet(name)
	}
	if w.err != nil {
		return
	}
	w.count++

	header, _ := w.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetSheetRow(name, axis, &row); err != nil {
			w.err = err
			return
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
		_ = w.f.SetCellStyle(name, "A1", last, header)
		lastCol, _ := excelize.ColumnNumberToName(len(rows[0]))
		_ = w.f.SetColWidth(name, "A", lastCol, 14)
	}
}
