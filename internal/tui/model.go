package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
	modePrompt
)

// resultMsg reports the outcome of a service call
type resultMsg struct {
	status string
	err    error
}

// Model is the terminal front-end. It holds no records itself; every view is
// rebuilt from the services after each change.
type Model struct {
	ctx     context.Context
	records services.RecordService
	data    services.DataService
	logger  zerolog.Logger
	keys    keyMap

	tab    int
	tables []table.Model

	mode   mode
	search textinput.Model
	query  string
	form   *form
	prompt *prompt

	status    string
	statusErr bool
	width     int
	height    int
}

// New creates the model over the shared services
func New(ctx context.Context, svc *services.Services, logger zerolog.Logger) *Model {
	m := &Model{
		ctx:     ctx,
		records: svc.Records,
		data:    svc.Data,
		logger:  logger,
		keys:    defaultKeyMap(),
		search:  newInput("search ids, names, titles", ""),
		status:  "ready",
	}
	for _, kind := range models.Kinds {
		m.tables = append(m.tables, newTable(kind))
	}
	m.refresh()
	return m
}

func newTable(kind models.Kind) table.Model {
	var cols []table.Column
	switch kind {
	case models.KindCourse:
		cols = []table.Column{
			{Title: "ID", Width: 10},
			{Title: "Title", Width: 28},
			{Title: "Instructor", Width: 12},
			{Title: "Students", Width: 30},
		}
	default:
		cols = []table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 22},
			{Title: "Age", Width: 4},
			{Title: "Email", Width: 28},
			{Title: "Courses", Width: 24},
		}
	}

	km := table.DefaultKeyMap()
	km.HalfPageDown.SetKeys("ctrl+d")
	km.HalfPageUp.SetKeys("ctrl+u")
	km.PageDown.SetKeys("pgdown")
	km.PageUp.SetKeys("pgup")

	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(12), table.WithKeyMap(km))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	styles.Selected = styles.Selected.Bold(true)
	t.SetStyles(styles)
	return t
}

func (m *Model) kind() models.Kind {
	return models.Kinds[m.tab]
}

// selectedID returns the ID of the highlighted row, or "" when the table is empty
func (m *Model) selectedID() string {
	row := m.tables[m.tab].SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// refresh rebuilds every table from the services, applying the search query
func (m *Model) refresh() {
	var students, instructors, courses []table.Row
	for s := range m.records.SearchStudents(m.ctx, m.query) {
		students = append(students, table.Row{s.ID, s.Name, strconv.Itoa(s.Age), s.Email, strings.Join(s.CourseIDs, " ")})
	}
	for in := range m.records.SearchInstructors(m.ctx, m.query) {
		instructors = append(instructors, table.Row{in.ID, in.Name, strconv.Itoa(in.Age), in.Email, strings.Join(in.CourseIDs, " ")})
	}
	for c := range m.records.SearchCourses(m.ctx, m.query) {
		courses = append(courses, table.Row{c.ID, c.Title, c.InstructorID, strings.Join(c.StudentIDs, " ")})
	}
	for i, rows := range [][]table.Row{students, instructors, courses} {
		t := &m.tables[i]
		t.SetRows(rows)
		if t.Cursor() >= len(rows) {
			t.SetCursor(max(len(rows)-1, 0))
		}
	}
}

func (m *Model) setStatus(status string, err error) {
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		m.logger.Warn().Err(err).Msg("Operation failed")
		return
	}
	m.status = status
	m.statusErr = false
}

// do runs fn as a command and reports its outcome
func (m *Model) do(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn()
		return resultMsg{status: status, err: err}
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for i := range m.tables {
			m.tables[i].SetHeight(max(msg.Height-9, 3))
		}
		return m, nil
	case resultMsg:
		m.setStatus(msg.status, msg.err)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m, m.updateSearch(msg)
		case modeForm:
			return m, m.updateForm(msg)
		case modePrompt:
			return m, m.updatePrompt(msg)
		default:
			return m, m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % len(m.tables)
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + len(m.tables) - 1) % len(m.tables)
	case msg.String() == "1", msg.String() == "2", msg.String() == "3":
		m.tab = int(msg.String()[0] - '1')
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.query)
		m.search.Focus()
	case key.Matches(msg, m.keys.Add):
		m.openForm("", nil)
	case key.Matches(msg, m.keys.Edit):
		m.editSelected()
	case key.Matches(msg, m.keys.Delete):
		m.confirmDelete()
	case key.Matches(msg, m.keys.Register):
		m.promptRelation(true)
	case key.Matches(msg, m.keys.Unregister):
		m.promptRelation(false)
	case key.Matches(msg, m.keys.Assign):
		m.promptAssign()
	case key.Matches(msg, m.keys.Save):
		m.openPrompt("Save to", m.data.DefaultFile(), func(name string) tea.Cmd {
			return m.do(func() (string, error) {
				path, err := m.data.Save(m.ctx, name)
				return "saved " + path, err
			})
		})
	case key.Matches(msg, m.keys.Load):
		m.openPrompt("Load from", m.data.DefaultFile(), func(name string) tea.Cmd {
			return m.do(func() (string, error) {
				path, err := m.data.Load(m.ctx, name)
				return "loaded " + path, err
			})
		})
	case key.Matches(msg, m.keys.Export):
		m.openPrompt("Export CSV into directory", "data directory", func(dir string) tea.Cmd {
			return m.do(func() (string, error) {
				paths, err := m.data.ExportAllCSV(m.ctx, dir)
				return fmt.Sprintf("exported %d files", len(paths)), err
			})
		})
	default:
		var cmd tea.Cmd
		m.tables[m.tab], cmd = m.tables[m.tab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.query = ""
		m.search.SetValue("")
	case tea.KeyEnter:
		m.query = strings.TrimSpace(m.search.Value())
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if q := strings.TrimSpace(m.search.Value()); q != m.query {
			m.query = q
			m.refresh()
		}
		return cmd
	}
	m.search.Blur()
	m.mode = modeBrowse
	m.refresh()
	return nil
}

func (m *Model) openForm(editID string, values []string) {
	m.form = newForm(m.kind(), editID, values)
	m.mode = modeForm
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = modeBrowse
}

func (m *Model) editSelected() {
	id := m.selectedID()
	if id == "" {
		m.setStatus("", apperrors.NewValidationError(string(m.kind()), "nothing selected"))
		return
	}
	row := m.tables[m.tab].SelectedRow()
	values := []string(row)
	if m.kind() != models.KindCourse {
		values = values[:4]
	} else {
		values = values[:3]
	}
	m.openForm(id, values)
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	switch msg.Type {
	case tea.KeyEsc:
		m.closeForm()
		m.setStatus("cancelled", nil)
		return nil
	case tea.KeyTab, tea.KeyDown:
		f.move(1)
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		f.move(-1)
		return nil
	case tea.KeyEnter:
		if !f.last() {
			f.move(1)
			return nil
		}
		cmd, err := m.submitForm(f)
		if err != nil {
			// Keep the form open so the input can be corrected
			m.setStatus("", err)
			return nil
		}
		m.closeForm()
		return cmd
	}
	return f.update(msg)
}

func parseAge(s string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || age < 0 {
		return 0, apperrors.NewValidationError("age", "must be a non-negative integer")
	}
	return age, nil
}

// submitForm turns the form into a create or update call
func (m *Model) submitForm(f *form) (tea.Cmd, error) {
	v := f.values()
	ctx := m.ctx

	if f.kind == models.KindCourse {
		if f.editID == "" {
			c := models.Course{ID: v[0], Title: v[1], InstructorID: v[2]}
			return m.do(func() (string, error) {
				created, err := m.records.CreateCourse(ctx, c)
				return "added course " + created.ID, err
			}), nil
		}
		upd := models.CourseUpdate{ID: &v[0], Title: &v[1], InstructorID: &v[2]}
		id := f.editID
		return m.do(func() (string, error) {
			c, err := m.records.UpdateCourse(ctx, id, upd)
			return "updated course " + c.ID, err
		}), nil
	}

	age, err := parseAge(v[2])
	if err != nil {
		return nil, err
	}

	if f.kind == models.KindInstructor {
		if f.editID == "" {
			in := models.Instructor{ID: v[0], Name: v[1], Age: age, Email: v[3]}
			return m.do(func() (string, error) {
				created, err := m.records.CreateInstructor(ctx, in)
				return "added instructor " + created.ID, err
			}), nil
		}
		upd := models.InstructorUpdate{ID: &v[0], Name: &v[1], Age: &age, Email: &v[3]}
		id := f.editID
		return m.do(func() (string, error) {
			in, err := m.records.UpdateInstructor(ctx, id, upd)
			return "updated instructor " + in.ID, err
		}), nil
	}

	if f.editID == "" {
		s := models.Student{ID: v[0], Name: v[1], Age: age, Email: v[3]}
		return m.do(func() (string, error) {
			created, err := m.records.CreateStudent(ctx, s)
			return "added student " + created.ID, err
		}), nil
	}
	upd := models.StudentUpdate{ID: &v[0], Name: &v[1], Age: &age, Email: &v[3]}
	id := f.editID
	return m.do(func() (string, error) {
		s, err := m.records.UpdateStudent(ctx, id, upd)
		return "updated student " + s.ID, err
	}), nil
}

func (m *Model) openPrompt(label, placeholder string, submit func(string) tea.Cmd) {
	m.prompt = newPrompt(label, placeholder, submit)
	m.mode = modePrompt
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = nil
		m.mode = modeBrowse
		m.setStatus("cancelled", nil)
		return nil
	case tea.KeyEnter:
		p := m.prompt
		m.prompt = nil
		m.mode = modeBrowse
		return p.submit(strings.TrimSpace(p.input.Value()))
	}
	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return cmd
}

func (m *Model) confirmDelete() {
	id := m.selectedID()
	if id == "" {
		m.setStatus("", apperrors.NewValidationError(string(m.kind()), "nothing selected"))
		return
	}
	kind := m.kind()
	m.openPrompt(fmt.Sprintf("Delete %s %s? (y/n)", kind, id), "n", func(answer string) tea.Cmd {
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			m.setStatus("delete cancelled", nil)
			return nil
		}
		return m.do(func() (string, error) {
			return fmt.Sprintf("deleted %s %s", kind, id), m.records.Delete(m.ctx, kind, id)
		})
	})
}

// promptRelation registers (or unregisters) the selected student for a
// course, or a student for the selected course.
func (m *Model) promptRelation(register bool) {
	id := m.selectedID()
	verb, op := "Register", m.records.Register
	if !register {
		verb, op = "Unregister", m.records.Unregister
	}

	switch {
	case id == "":
		m.setStatus("", apperrors.NewValidationError(string(m.kind()), "nothing selected"))
	case m.kind() == models.KindStudent:
		m.openPrompt(verb+" "+id+" for course", "course id", func(courseID string) tea.Cmd {
			return m.do(func() (string, error) {
				return fmt.Sprintf("%sed %s for %s", strings.ToLower(verb), id, courseID), op(m.ctx, id, courseID)
			})
		})
	case m.kind() == models.KindCourse:
		m.openPrompt(verb+" student for "+id, "student id", func(studentID string) tea.Cmd {
			return m.do(func() (string, error) {
				return fmt.Sprintf("%sed %s for %s", strings.ToLower(verb), studentID, id), op(m.ctx, studentID, id)
			})
		})
	default:
		m.setStatus("", apperrors.NewValidationError("kind", "registration applies to students and courses"))
	}
}

// promptAssign makes the selected instructor teach a course, or sets the
// instructor of the selected course. An empty instructor ID clears it.
func (m *Model) promptAssign() {
	id := m.selectedID()
	switch {
	case id == "":
		m.setStatus("", apperrors.NewValidationError(string(m.kind()), "nothing selected"))
	case m.kind() == models.KindInstructor:
		m.openPrompt("Assign "+id+" to course", "course id", func(courseID string) tea.Cmd {
			return m.do(func() (string, error) {
				return fmt.Sprintf("assigned %s to %s", id, courseID), m.records.Assign(m.ctx, id, courseID)
			})
		})
	case m.kind() == models.KindCourse:
		m.openPrompt("Instructor for "+id+" (empty clears)", "instructor id", func(instructorID string) tea.Cmd {
			return m.do(func() (string, error) {
				if instructorID == "" {
					return "cleared instructor of " + id, m.records.Unassign(m.ctx, id)
				}
				return fmt.Sprintf("assigned %s to %s", instructorID, id), m.records.Assign(m.ctx, instructorID, id)
			})
		})
	default:
		m.setStatus("", apperrors.NewValidationError("kind", "assignment applies to instructors and courses"))
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var tabs []string
	for i, kind := range models.Kinds {
		style := inactiveTabStyle
		if i == m.tab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d %s", i+1, kind.Title())))
	}

	var body string
	if m.mode == modeForm && m.form != nil {
		body = m.form.view()
	} else {
		body = m.tables[m.tab].View()
	}

	var line string
	switch {
	case m.mode == modeSearch:
		line = focusLabelStyle.UnsetWidth().Render("/ ") + m.search.View()
	case m.mode == modePrompt && m.prompt != nil:
		line = m.prompt.view()
	case m.query != "":
		line = helpStyle.Render("filter: " + m.query + " (/ then esc clears)")
	}

	stats := m.records.Stats(m.ctx)
	counts := helpStyle.Render(fmt.Sprintf("%d students • %d instructors • %d courses • %d registrations",
		stats.Students, stats.Instructors, stats.Courses, stats.Registrations))
	status := statusOKStyle.Render(m.status)
	if m.statusErr {
		status = statusErrStyle.Render("error: " + m.status)
	}

	var help []string
	for _, b := range m.keys.help() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		panelStyle.Render(body),
		line,
		status,
		counts,
		helpStyle.Render(strings.Join(help, " • ")),
	)
}
