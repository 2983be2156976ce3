package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"sahayak/internal/livetest"
)

const levelPoll = 100 * time.Millisecond

var testTypeLabels = []string{"Section A (Q&A)", "Section B (Spelling Quiz)"}

// LiveTestView is the voice assessment tab.
type LiveTestView struct {
	session *livetest.Session
	window  fyne.Window
	words   []string

	setupBox *fyne.Container
	testBox  *fyne.Container

	question *widget.Label
	level    *widget.ProgressBar
	elapsed  *widget.Label
	outcome  *widget.Label
	student  *widget.Entry
	typed    *widget.Entry
	record   *widget.Button
	stop     *widget.Button
	submit   *widget.Button
	retake   *widget.Button
	results  *widget.Label
	stats    *widget.Label
	status   *widget.Label

	polling chan struct{}
}

func NewLiveTestView(s *livetest.Session, w fyne.Window) *LiveTestView {
	return &LiveTestView{session: s, window: w}
}

func (v *LiveTestView) Objects() fyne.CanvasObject {
	v.status = widget.NewLabel("")
	v.setupBox = v.setupForm()
	v.testBox = v.testPanel()
	v.testBox.Hide()

	v.results = widget.NewLabel("No attempts yet")
	v.results.Wrapping = fyne.TextWrapWord
	v.stats = widget.NewLabel("")
	resultsCard := widget.NewCard("Results", "", container.NewBorder(
		container.NewVBox(v.stats, container.NewHBox(
			widget.NewButtonWithIcon("Export CSV", theme.DocumentSaveIcon(), v.exportCSV),
			widget.NewButtonWithIcon("Copy Summary", theme.ContentCopyIcon(), v.copySummary),
		)),
		nil, nil, nil,
		container.NewVScroll(v.results),
	))

	return container.NewBorder(nil, v.status, nil, nil,
		container.NewHSplit(container.NewVBox(v.setupBox, v.testBox), resultsCard))
}

func (v *LiveTestView) setStatus(text string) {
	fyne.Do(func() { v.status.SetText(text) })
}

func (v *LiveTestView) setupForm() *fyne.Container {
	testType := widget.NewRadioGroup(testTypeLabels, nil)
	testType.SetSelected(testTypeLabels[0])
	grade := widget.NewSelect(livetest.Grades, nil)
	subject := widget.NewSelect(livetest.Subjects, nil)
	topic := widget.NewEntry()
	topic.SetPlaceHolder("e.g. Animals")

	langLabels := make([]string, len(livetest.Languages))
	for i, l := range livetest.Languages {
		langLabels[i] = l.Label
	}
	lang := widget.NewSelect(langLabels, nil)
	lang.SetSelected(langLabels[0])

	wordsLabel := widget.NewLabel("No word list")
	upload := widget.NewButtonWithIcon("Word List", theme.FolderOpenIcon(), func() {
		open := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			if r == nil {
				return
			}
			defer r.Close()
			words, err := livetest.ParseWordList(r, r.URI().Name())
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			v.words = words
			wordsLabel.SetText(fmt.Sprintf("%d words loaded from %s", len(words), r.URI().Name()))
		}, v.window)
		open.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".csv"}))
		open.Show()
	})

	form := widget.NewForm(
		widget.NewFormItem("Test", testType),
		widget.NewFormItem("Grade", grade),
		widget.NewFormItem("Subject", subject),
		widget.NewFormItem("Topic", topic),
		widget.NewFormItem("Language", lang),
		widget.NewFormItem("Spelling", container.NewHBox(upload, wordsLabel)),
	)
	form.SubmitText = "Start Test"
	form.OnSubmit = func() {
		setup := livetest.Setup{
			Type:     livetest.TypeSectionA,
			Grade:    grade.Selected,
			Subject:  subject.Selected,
			Topic:    strings.TrimSpace(topic.Text),
			Language: languageValue(lang.Selected),
			Words:    v.words,
		}
		if testType.Selected == testTypeLabels[1] {
			setup.Type = livetest.TypeSectionB
		}
		if err := v.session.Start(setup); err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		v.setupBox.Hide()
		v.testBox.Show()
		v.refresh()
	}
	return container.NewVBox(widget.NewLabelWithStyle("Test Setup", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), form)
}

// languageValue maps a menu label back to its language value.
func languageValue(label string) string {
	for _, l := range livetest.Languages {
		if l.Label == label {
			return l.Value
		}
	}
	return livetest.Languages[0].Value
}

func (v *LiveTestView) testPanel() *fyne.Container {
	v.question = widget.NewLabel("")
	v.question.Wrapping = fyne.TextWrapWord
	v.level = widget.NewProgressBar()
	v.level.Max = 100
	v.elapsed = widget.NewLabel("0s")
	v.outcome = widget.NewLabel("")
	v.outcome.Wrapping = fyne.TextWrapWord

	v.record = widget.NewButtonWithIcon("Record", theme.MediaRecordIcon(), v.startRecording)
	v.stop = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), v.stopRecording)

	v.typed = widget.NewEntry()
	v.typed.SetPlaceHolder("Or type the answer")
	v.typed.OnSubmitted = func(string) { v.checkTyped() }

	v.student = widget.NewEntry()
	v.student.SetPlaceHolder("Student name")
	v.submit = widget.NewButtonWithIcon("Submit", theme.ConfirmIcon(), v.submitAttempt)
	v.retake = widget.NewButtonWithIcon("Retake", theme.ViewRefreshIcon(), func() {
		if err := v.session.Retake(); err != nil {
			v.setStatus(err.Error())
		}
		v.refresh()
	})
	end := widget.NewButtonWithIcon("End Test", theme.CancelIcon(), func() {
		v.stopPolling()
		v.session.End()
		v.testBox.Hide()
		v.setupBox.Show()
	})

	return container.NewVBox(
		widget.NewLabelWithStyle("Question", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.question,
		container.NewHBox(v.record, v.stop, v.elapsed),
		v.level,
		container.NewBorder(nil, nil, nil, widget.NewButton("Check", v.checkTyped), v.typed),
		v.outcome,
		container.NewBorder(nil, nil, nil, container.NewHBox(v.submit, v.retake), v.student),
		end,
	)
}

// refresh syncs the test panel with the session phase. Call on the UI goroutine.
func (v *LiveTestView) refresh() {
	phase := v.session.Phase()
	if q, ok := v.session.Current(); ok {
		text := q.Prompt
		if v.session.Section() == livetest.SectionB {
			text = "Spell the word: " + q.Prompt
		}
		if len(q.Options) > 0 {
			text += "\n" + strings.Join(q.Options, "   ")
		}
		v.question.SetText(text)
	}

	setEnabled(v.record, phase == livetest.PhaseReady)
	setEnabled(v.stop, phase == livetest.PhaseRecording)
	setEnabled(v.submit, phase == livetest.PhaseReviewed)
	setEnabled(v.retake, phase == livetest.PhaseReviewed)

	out := v.session.Outcome()
	if out.Feedback != "" {
		v.outcome.SetText(fmt.Sprintf("Heard: %q\n%s", out.Answer, out.Feedback))
	} else {
		v.outcome.SetText("")
	}
	v.elapsed.SetText(fmt.Sprintf("%ds", v.session.Elapsed()))
	if phase != livetest.PhaseRecording {
		v.level.SetValue(0)
	}
}

func setEnabled(w fyne.Disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}

func (v *LiveTestView) startRecording() {
	v.record.Disable()
	v.setStatus("Reading the question...")
	go func() {
		if err := v.session.StartRecording(context.Background()); err != nil {
			v.setStatus(err.Error())
			fyne.Do(v.refresh)
			return
		}
		v.setStatus("Recording...")
		fyne.Do(func() {
			v.refresh()
			v.startPolling()
		})
	}()
}

func (v *LiveTestView) stopRecording() {
	v.stopPolling()
	v.stop.Disable()
	v.setStatus("Processing...")
	go func() {
		_, err := v.session.StopRecording(context.Background())
		if err != nil {
			v.setStatus(err.Error())
		} else {
			v.setStatus("")
		}
		fyne.Do(v.refresh)
	}()
}

func (v *LiveTestView) checkTyped() {
	text := v.typed.Text
	go func() {
		if _, err := v.session.Answer(context.Background(), text); err != nil {
			v.setStatus(err.Error())
		}
		fyne.Do(func() {
			v.typed.SetText("")
			v.refresh()
		})
	}()
}

func (v *LiveTestView) submitAttempt() {
	if _, err := v.session.Submit(v.student.Text); err != nil {
		dialog.ShowError(err, v.window)
		return
	}
	v.refresh()
	v.showResults()
}

func (v *LiveTestView) showResults() {
	results := v.session.Results()
	if len(results) == 0 {
		v.results.SetText("No attempts yet")
		v.stats.SetText("")
		return
	}
	var sb strings.Builder
	for _, r := range results {
		mark := "✗"
		if r.Correct {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "%s %s  %s  %s → %q (%ds)\n",
			mark, r.Timestamp.Format("15:04"), r.Student, r.Question, r.StudentAnswer, r.Duration)
	}
	v.results.SetText(sb.String())

	st := v.session.Stats()
	v.stats.SetText(fmt.Sprintf("%d attempts, %d correct, %d%% accuracy, %.1fs average",
		st.Total, st.Correct, st.Accuracy, st.AverageDuration))
}

// startPolling updates the level meter and timer while recording.
func (v *LiveTestView) startPolling() {
	v.stopPolling()
	done := make(chan struct{})
	v.polling = done
	go func() {
		ticker := time.NewTicker(levelPoll)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				level, secs := v.session.Level(), v.session.Elapsed()
				fyne.Do(func() {
					v.level.SetValue(level)
					v.elapsed.SetText(fmt.Sprintf("%ds", secs))
				})
			}
		}
	}()
}

func (v *LiveTestView) stopPolling() {
	if v.polling != nil {
		close(v.polling)
		v.polling = nil
	}
}

func (v *LiveTestView) exportCSV() {
	results := v.session.Results()
	if len(results) == 0 {
		dialog.ShowInformation("Export", "No results to export", v.window)
		return
	}
	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := livetest.WriteCSV(w, results); err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		v.setStatus("Exported " + w.URI().Name())
	}, v.window)
	save.SetFileName(livetest.CSVFileName(time.Now()))
	save.Show()
}

func (v *LiveTestView) copySummary() {
	v.window.Clipboard().SetContent(livetest.Summary(v.session.Results()))
	v.setStatus("Summary copied")
}
