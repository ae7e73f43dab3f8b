package form_test

import (
	"sync"
	"testing"
	"time"

	"github.com/okian/screening/internal/domain/form"
	"github.com/okian/screening/internal/domain/screening"
	"github.com/okian/screening/pkg/timer"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingListener struct {
	computed []screening.Result
	rejected []error
}

func (l *recordingListener) Computed(_ screening.Input, res screening.Result) {
	l.computed = append(l.computed, res)
}

func (l *recordingListener) Rejected(err error) {
	l.rejected = append(l.rejected, err)
}

func fill(f *form.Form, exam string, grades ...string) {
	f.SetExamScore(exam)
	for i, g := range grades {
		f.SetGrade(i, g)
	}
}

func TestFormSubmit(t *testing.T) {
	Convey("Given a form on a fake clock", t, func() {
		clock := timer.NewFake()
		listener := &recordingListener{}
		f := form.New(form.WithClock(clock), form.WithListener(listener))

		Convey("When it is new", func() {
			v := f.View()

			Convey("Then it is idle and cannot be submitted", func() {
				So(v.State, ShouldEqual, form.Idle)
				So(v.CanSubmit, ShouldBeFalse)
				So(v.Display, ShouldBeEmpty)
				So(len(v.Grades), ShouldEqual, 5)
			})
		})

		Convey("When valid input is submitted", func() {
			fill(f, "250", "A1", "B2", "C4", "B3", "C5")
			So(f.CanSubmit(), ShouldBeTrue)
			v := f.Submit()

			Convey("Then it computes after the loading delay", func() {
				So(v.State, ShouldEqual, form.Computing)
				So(v.Loading, ShouldBeTrue)
				So(v.CanSubmit, ShouldBeFalse)

				clock.Advance(form.DefaultLoadingDelay - time.Millisecond)
				So(f.State(), ShouldEqual, form.Computing)

				clock.Advance(time.Millisecond)
				v = f.View()
				So(v.State, ShouldEqual, form.ShowingResult)
				So(v.Display, ShouldStartWith, "Your UNIOSUN Screening Score: 67.50%")
				So(v.Result, ShouldNotBeNil)
				So(v.Result.Total, ShouldEqual, 67.5)
				So(v.CanSubmit, ShouldBeTrue)
				So(len(listener.computed), ShouldEqual, 1)
			})

			Convey("And the result does not clear itself", func() {
				clock.Advance(time.Hour)
				So(f.State(), ShouldEqual, form.ShowingResult)
			})
		})

		Convey("When valid input is submitted twice in a row", func() {
			fill(f, "400", "A1", "A1", "A1", "A1", "A1")
			f.Submit()
			clock.Advance(form.DefaultLoadingDelay / 2)
			f.Submit()
			clock.Advance(form.DefaultLoadingDelay / 2)

			Convey("Then the first loading timer is cancelled", func() {
				So(f.State(), ShouldEqual, form.Computing)
				clock.Advance(form.DefaultLoadingDelay / 2)
				So(f.State(), ShouldEqual, form.ShowingResult)
				So(len(listener.computed), ShouldEqual, 1)
				So(listener.computed[0].Total, ShouldEqual, 100.0)
			})
		})

		Convey("When the exam score is out of range", func() {
			fill(f, "-5", "A1", "B2", "C4", "B3", "C5")
			v := f.Submit()

			Convey("Then the exam error is shown and the field decorated", func() {
				So(v.State, ShouldEqual, form.ShowingError)
				So(v.IsError, ShouldBeTrue)
				So(v.Display, ShouldEqual, screening.MessageOutOfRangeScore)
				So(v.FieldErrors, ShouldResemble, []form.Field{form.FieldExam})
				So(v.Result, ShouldBeNil)
				So(len(listener.rejected), ShouldEqual, 1)
			})

			Convey("And the error clears after the display timeout", func() {
				clock.Advance(form.DefaultErrorDisplay - time.Millisecond)
				So(f.State(), ShouldEqual, form.ShowingError)
				clock.Advance(time.Millisecond)
				v = f.View()
				So(v.State, ShouldEqual, form.Idle)
				So(v.Display, ShouldBeEmpty)
			})
		})

		Convey("When grades are incomplete", func() {
			fill(f, "200", "A1", "", "C4")
			v := f.Submit()

			Convey("Then every empty slot is decorated", func() {
				So(v.Display, ShouldEqual, screening.MessageIncompleteGrades)
				So(v.FieldErrors, ShouldResemble, []form.Field{
					form.GradeField(1), form.GradeField(3), form.GradeField(4),
				})
			})

			Convey("And editing a slot clears its decoration only", func() {
				f.SetGrade(1, "B2")
				So(f.View().FieldErrors, ShouldResemble, []form.Field{form.GradeField(3), form.GradeField(4)})
				So(f.State(), ShouldEqual, form.ShowingError)
			})
		})

		Convey("When an error is followed by a corrected submit", func() {
			fill(f, "500", "A1", "A1", "A1", "A1", "A1")
			f.Submit()
			clock.Advance(4 * time.Second)
			f.SetExamScore("300")
			f.Submit()

			Convey("Then the pending error clear is cancelled", func() {
				clock.Advance(form.DefaultLoadingDelay)
				So(f.State(), ShouldEqual, form.ShowingResult)
				clock.Advance(form.DefaultErrorDisplay)
				So(f.State(), ShouldEqual, form.ShowingResult)
			})
		})

		Convey("When a second error replaces the first", func() {
			f.Submit()
			clock.Advance(3 * time.Second)
			f.Submit()
			clock.Advance(3 * time.Second)

			Convey("Then the error stays for the full timeout of the last submit", func() {
				So(f.State(), ShouldEqual, form.ShowingError)
				clock.Advance(2 * time.Second)
				So(f.State(), ShouldEqual, form.Idle)
			})
		})

		Convey("When the form is reset while computing", func() {
			fill(f, "100", "F9", "F9", "F9", "F9", "F9")
			f.Submit()
			v := f.Reset()
			clock.Advance(time.Minute)

			Convey("Then nothing is computed", func() {
				So(v.State, ShouldEqual, form.Idle)
				So(v.ExamScore, ShouldBeEmpty)
				So(f.State(), ShouldEqual, form.Idle)
				So(listener.computed, ShouldBeEmpty)
				So(clock.Waiting(), ShouldEqual, 0)
			})
		})
	})
}

// gatedClock holds the first AfterFunc call until release is closed.
type gatedClock struct {
	*timer.Fake
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (c *gatedClock) AfterFunc(d time.Duration, fn func()) timer.Stopper {
	c.once.Do(func() {
		close(c.entered)
		<-c.release
	})
	return c.Fake.AfterFunc(d, fn)
}

func TestFormConcurrentSubmit(t *testing.T) {
	Convey("Given a submit whose timer scheduling is held back", t, func() {
		clock := &gatedClock{Fake: timer.NewFake(), entered: make(chan struct{}), release: make(chan struct{})}
		listener := &recordingListener{}
		f := form.New(form.WithClock(clock), form.WithListener(listener))
		fill(f, "250", "A1", "B2", "C4", "B3", "C5")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); f.Submit() }()
		<-clock.entered
		go func() { defer wg.Done(); f.Submit() }()
		// let the second submit reach the form before the first one finishes scheduling
		time.Sleep(20 * time.Millisecond)
		close(clock.release)
		wg.Wait()

		Convey("Then the later submit owns the loading timer and the result arrives", func() {
			So(clock.Waiting(), ShouldEqual, 1)
			clock.Advance(form.DefaultLoadingDelay)
			So(f.State(), ShouldEqual, form.ShowingResult)
			So(f.CanSubmit(), ShouldBeTrue)
			So(listener.computed, ShouldHaveLength, 1)
		})
	})

	Convey("Given concurrent invalid submits", t, func() {
		clock := &gatedClock{Fake: timer.NewFake(), entered: make(chan struct{}), release: make(chan struct{})}
		f := form.New(form.WithClock(clock))
		fill(f, "500", "A1", "B2", "C4", "B3", "C5")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); f.Submit() }()
		<-clock.entered
		go func() { defer wg.Done(); f.Submit() }()
		time.Sleep(20 * time.Millisecond)
		close(clock.release)
		wg.Wait()

		Convey("Then the error still clears after the display timeout", func() {
			So(f.State(), ShouldEqual, form.ShowingError)
			clock.Advance(form.DefaultErrorDisplay)
			So(f.State(), ShouldEqual, form.Idle)
		})
	})
}

func TestFormFieldEdits(t *testing.T) {
	Convey("Given a form", t, func() {
		f := form.New(form.WithClock(timer.NewFake()))

		Convey("When the exam field receives an invalid value", func() {
			f.SetExamScore("4000")

			Convey("Then it is decorated immediately", func() {
				So(f.View().FieldErrors, ShouldResemble, []form.Field{form.FieldExam})
			})

			Convey("And emptying the field clears the decoration", func() {
				f.SetExamScore("")
				So(f.View().FieldErrors, ShouldBeEmpty)
			})
		})

		Convey("When a grade slot is out of range", func() {
			So(f.SetGrade(5, "A1"), ShouldBeFalse)
			So(f.SetGrade(-1, "A1"), ShouldBeFalse)
		})

		Convey("When only some fields are valid", func() {
			fill(f, "300", "A1", "A1", "A1", "A1")
			So(f.CanSubmit(), ShouldBeFalse)
			f.SetGrade(4, "E8")
			So(f.CanSubmit(), ShouldBeTrue)
		})
	})
}

func TestStateString(t *testing.T) {
	Convey("Given form states", t, func() {
		So(form.Idle.String(), ShouldEqual, "idle")
		So(form.ShowingError.String(), ShouldEqual, "showing_error")
		So(form.State(42).String(), ShouldEqual, "unknown")
		So(form.GradeField(0), ShouldEqual, form.Field("grade_1"))
	})
}
