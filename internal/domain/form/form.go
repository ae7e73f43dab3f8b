package form

import (
	"sync"
	"time"

	"github.com/okian/screening/internal/domain/screening"
	"github.com/okian/screening/pkg/timer"
)

// View is a snapshot of a Form for rendering.
type View struct {
	State       State             `json:"state"`
	Display     string            `json:"display"`
	IsError     bool              `json:"is_error"`
	Loading     bool              `json:"loading"`
	CanSubmit   bool              `json:"can_submit"`
	ExamScore   string            `json:"exam_score"`
	Grades      []string          `json:"grades"`
	FieldErrors []Field           `json:"field_errors"`
	Result      *screening.Result `json:"result,omitempty"`
}

// Form holds the fields and interaction state of one screening form.
type Form struct {
	clock        timer.Clock
	loadingDelay time.Duration
	errorDisplay time.Duration
	listener     Listener

	loading    *timer.Slot
	errorClear *timer.Slot

	mu        sync.Mutex
	state     State
	exam      string
	grades    [screening.RequiredSubjects]string
	decorated map[Field]bool
	display   string
	result    *screening.Result
	// submission counter; deferred callbacks compare it to drop stale work
	seq uint64
}

// New creates an idle Form with empty fields.
func New(opts ...Option) *Form {
	f := &Form{
		clock:        timer.System(),
		loadingDelay: DefaultLoadingDelay,
		errorDisplay: DefaultErrorDisplay,
		decorated:    make(map[Field]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.loading = timer.NewSlot(f.clock)
	f.errorClear = timer.NewSlot(f.clock)
	return f
}

// SetExamScore edits the exam score field. The field's error decoration is
// cleared and re-applied only when the new, non-empty value is invalid.
func (f *Form) SetExamScore(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exam = raw
	delete(f.decorated, FieldExam)
	if raw != "" {
		if _, err := screening.ValidateExamScore(raw); err != nil {
			f.decorated[FieldExam] = true
		}
	}
}

// SetGrade edits grade slot i (zero based). It returns false when i is out of
// range.
func (f *Form) SetGrade(i int, label string) bool {
	if i < 0 || i >= screening.RequiredSubjects {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grades[i] = label
	delete(f.decorated, GradeField(i))
	return true
}

// CanSubmit reports whether the submit action should be enabled.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

func (f *Form) canSubmitLocked() bool {
	if f.state == Computing {
		return false
	}
	if _, err := screening.ValidateExamScore(f.exam); err != nil {
		return false
	}
	return len(screening.MissingSlots(f.gradeLabelsLocked())) == 0
}

// Submit validates the fields. Invalid input moves the form to ShowingError
// and schedules the error to clear; valid input moves it to Computing and
// schedules the result.
//
// Timers are scheduled under f.mu so concurrent submits schedule in seq
// order and the last submit always owns both slots.
func (f *Form) Submit() View {
	f.mu.Lock()
	f.errorClear.Cancel()
	f.loading.Cancel()
	f.seq++
	seq := f.seq
	f.state = Validating
	f.display = ""
	f.result = nil

	in, err := screening.Validate(screening.RawInput{ExamScore: f.exam, Grades: f.grades[:]})
	if err != nil {
		f.rejectLocked(err)
		f.errorClear.Schedule(f.errorDisplay, func() { f.clearError(seq) })
		view := f.viewLocked()
		f.mu.Unlock()

		if f.listener != nil {
			f.listener.Rejected(err)
		}
		return view
	}

	f.state = Computing
	f.loading.Schedule(f.loadingDelay, func() { f.compute(seq, in) })
	view := f.viewLocked()
	f.mu.Unlock()
	return view
}

// Reset clears every field and pending timer.
func (f *Form) Reset() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorClear.Cancel()
	f.loading.Cancel()
	f.seq++
	f.state = Idle
	f.exam = ""
	f.grades = [screening.RequiredSubjects]string{}
	f.decorated = make(map[Field]bool)
	f.display = ""
	f.result = nil
	return f.viewLocked()
}

// Close cancels pending timers.
func (f *Form) Close() {
	f.errorClear.Cancel()
	f.loading.Cancel()
}

// View returns a snapshot of the form.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// State returns the current interaction state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) rejectLocked(err error) {
	f.state = ShowingError
	f.display = screening.FormatError(err)
	if screening.KindOf(err) == screening.CodeOutOfRangeScore {
		f.decorated[FieldExam] = true
		return
	}
	for _, i := range screening.MissingSlots(f.gradeLabelsLocked()) {
		f.decorated[GradeField(i)] = true
	}
}

func (f *Form) compute(seq uint64, in screening.Input) {
	res := screening.Compute(in)

	f.mu.Lock()
	if f.seq != seq || f.state != Computing {
		f.mu.Unlock()
		return
	}
	f.state = ShowingResult
	f.display = screening.FormatResult(res)
	f.result = &res
	f.mu.Unlock()

	if f.listener != nil {
		f.listener.Computed(in, res)
	}
}

func (f *Form) clearError(seq uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seq != seq || f.state != ShowingError {
		return
	}
	f.state = Idle
	f.display = ""
}

func (f *Form) gradeLabelsLocked() []screening.Grade {
	out := make([]screening.Grade, len(f.grades))
	for i, g := range f.grades {
		out[i] = screening.Grade(g)
	}
	return out
}

func (f *Form) viewLocked() View {
	v := View{
		State:       f.state,
		Display:     f.display,
		IsError:     f.state == ShowingError,
		Loading:     f.state == Computing,
		CanSubmit:   f.canSubmitLocked(),
		ExamScore:   f.exam,
		Grades:      append([]string(nil), f.grades[:]...),
		FieldErrors: []Field{},
	}
	if f.result != nil {
		r := *f.result
		v.Result = &r
	}
	// stable order: exam first, then grade slots
	if f.decorated[FieldExam] {
		v.FieldErrors = append(v.FieldErrors, FieldExam)
	}
	for i := range f.grades {
		if f.decorated[GradeField(i)] {
			v.FieldErrors = append(v.FieldErrors, GradeField(i))
		}
	}
	return v
}
