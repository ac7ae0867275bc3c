package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/readtrack/readtrack-backend/internal/curriculum"
	"github.com/readtrack/readtrack-backend/internal/gridview"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
)

const workbookName = "group-view.xlsx"

// ErrGroupNotFound is returned when no master record carries the group.
var ErrGroupNotFound = errors.New("group not found")

// GroupViewService owns the on-disk group view workbook: full re-renders
// after queue folds and rebuilds, targeted cell patches on the immediate
// path, and scans for the importer. The workbook is a projection of the
// master records; losing it costs nothing but a re-render.
type GroupViewService struct {
	studentRepo *repository.StudentRepository
	cat         *curriculum.Catalog
	scanner     *gridview.Scanner
	renderer    *gridview.Renderer
	dir         string
	layout      gridview.Layout
	log         zerolog.Logger

	// Guards the workbook file. Renders and patches rewrite it whole.
	mu sync.Mutex
}

// NewGroupViewService creates a new GroupViewService.
func NewGroupViewService(
	studentRepo *repository.StudentRepository,
	cat *curriculum.Catalog,
	dir string,
	layout gridview.Layout,
	log zerolog.Logger,
) *GroupViewService {
	return &GroupViewService{
		studentRepo: studentRepo,
		cat:         cat,
		scanner:     gridview.NewScanner(cat),
		renderer:    gridview.NewRenderer(),
		dir:         dir,
		layout:      layout,
		log:         log.With().Str("component", "groupview_service").Logger(),
	}
}

// WorkbookPath returns the on-disk location of the rendered workbook.
func (s *GroupViewService) WorkbookPath() string {
	return filepath.Join(s.dir, workbookName)
}

// Blocks builds the logical group view straight from master records.
// groupName narrows to one group when non-empty.
func (s *GroupViewService) Blocks(ctx context.Context, groupName string) ([]model.GroupViewBlock, error) {
	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	groups, err := s.studentRepo.GroupSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	byGroup := make(map[string][]model.StudentRecord)
	for _, rec := range students {
		if rec.Enrollment != model.EnrollmentActive {
			continue
		}
		byGroup[rec.GroupName] = append(byGroup[rec.GroupName], rec)
	}

	var blocks []model.GroupViewBlock
	for _, g := range groups {
		if groupName != "" && g.GroupName != groupName {
			continue
		}
		blocks = append(blocks, s.buildBlock(g.GroupName, byGroup[g.GroupName]))
	}
	if groupName != "" && len(blocks) == 0 {
		return nil, ErrGroupNotFound
	}
	return blocks, nil
}

// buildBlock assembles one group's block. Columns span the group's whole
// assigned range (the union of its students' grade profiles, minimum plus
// current-year lessons) so untouched lessons render as blank slots, plus
// any extra keys already present in vectors. Named lessons go after the
// numbered ones.
func (s *GroupViewService) buildBlock(groupName string, recs []model.StudentRecord) model.GroupViewBlock {
	numbered := make(map[int]bool)
	named := make(map[string]bool)
	for _, rec := range recs {
		profile := s.cat.Profile(rec.Grade)
		for _, n := range profile.MinLessons {
			numbered[n] = true
		}
		for _, n := range profile.CurrentYear {
			numbered[n] = true
		}
		for key := range rec.StatusVector {
			if n, ok := s.cat.NumberFromKey(key); ok {
				numbered[n] = true
			} else {
				named[key] = true
			}
		}
	}

	nums := make([]int, 0, len(numbered))
	for n := range numbered {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	labels := make([]string, 0, len(named))
	for key := range named {
		labels = append(labels, key)
	}
	sort.Strings(labels)

	block := model.GroupViewBlock{GroupName: groupName}
	for i, n := range nums {
		num := n
		block.Lessons = append(block.Lessons, model.LessonColumn{
			Index:  i,
			Label:  "Lesson " + strconv.Itoa(n),
			Number: &num,
		})
	}
	for j, label := range labels {
		block.Lessons = append(block.Lessons, model.LessonColumn{
			Index: len(nums) + j,
			Label: label,
		})
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	for _, rec := range recs {
		row := model.StudentViewRow{Name: rec.Name, Statuses: make([]string, len(block.Lessons))}
		for i, col := range block.Lessons {
			key := s.cat.Key(col.Label)
			if st, ok := rec.StatusVector[key]; ok {
				row.Statuses[i] = string(st)
			}
		}
		block.Students = append(block.Students, row)
	}
	return block
}

// RenderAll rewrites the workbook from master records.
func (s *GroupViewService) RenderAll(ctx context.Context) error {
	blocks, err := s.Blocks(ctx, "")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.renderer.Render(blocks, s.layout)
	if err := s.saveGrid(grid); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	s.log.Info().Int("groups", len(blocks)).Str("layout", string(s.layout)).Msg("Group view rendered")
	return nil
}

// PatchColumn writes one (group, lesson) column of statuses into the
// existing workbook. Missing structure is a soft no-op: the next full
// render restores consistency.
func (s *GroupViewService) PatchColumn(ctx context.Context, groupName, lessonLabel string, byStudent map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.openWorkbook()
	if err != nil {
		s.log.Warn().Err(err).Str("group", groupName).Msg("Workbook missing, patch skipped")
		return nil
	}
	defer f.Close()

	grid, err := gridview.GridFromSheet(f, gridview.DefaultSheet)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}

	region, found := s.scanner.Locate(grid, s.layout, groupName)
	if !found {
		s.log.Warn().Str("group", groupName).Msg("Group has no block in the workbook, patch skipped")
		return nil
	}

	patched, colFound := region.PatchStatuses(grid, s.cat, lessonLabel, byStudent)
	if !colFound {
		s.log.Warn().Str("group", groupName).Str("lesson", lessonLabel).Msg("Lesson column not in block, patch skipped")
		return nil
	}

	if err := gridview.WriteGridToSheet(f, gridview.DefaultSheet, grid); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	s.log.Debug().Str("group", groupName).Str("lesson", lessonLabel).Int("cells", patched).Msg("Workbook column patched")
	return nil
}

// ScanWorkbook reads the on-disk workbook back into logical blocks.
func (s *GroupViewService) ScanWorkbook(ctx context.Context) ([]model.GroupViewBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.openWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	grid, err := gridview.GridFromSheet(f, gridview.DefaultSheet)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return s.scanner.Scan(grid, s.layout), nil
}

// ScanUpload parses an uploaded workbook (importer path). The upload may
// use either layout; the caller picks.
func (s *GroupViewService) ScanUpload(path string, layout gridview.Layout) ([]model.GroupViewBlock, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	grid, err := gridview.GridFromSheet(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return s.scanner.Scan(grid, layout), nil
}

func (s *GroupViewService) openWorkbook() (*excelize.File, error) {
	return excelize.OpenFile(s.WorkbookPath())
}

func (s *GroupViewService) saveGrid(grid *gridview.SliceGrid) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := gridview.WriteGridToSheet(f, gridview.DefaultSheet, grid); err != nil {
		return err
	}
	// Drop the excelize default sheet so the workbook opens on the view.
	if f.GetSheetName(0) != gridview.DefaultSheet {
		_ = f.DeleteSheet(f.GetSheetName(0))
	}
	return f.SaveAs(s.WorkbookPath())
}
