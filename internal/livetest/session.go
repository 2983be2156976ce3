// Package livetest runs a voice-based classroom assessment.
//
// A Session moves through Setup, Ready, Recording, Processing and Reviewed.
// Section A asks fixed Q&A questions; Section B asks the student to spell
// words from an uploaded list. Audio capture, transcription and speech are
// platform capabilities supplied through interfaces.
package livetest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"sahayak/internal/state"
)

var (
	ErrNoMicrophone     = errors.New("no microphone found")
	ErrNoTranscriber    = errors.New("speech recognition is not available")
	ErrWrongPhase       = errors.New("operation not allowed now")
	ErrStudentRequired  = errors.New("please enter student name")
	ErrWordListRequired = errors.New("please upload a word list for Section B (Spelling Quiz)")
)

type Section string

const (
	SectionA Section = "A"
	SectionB Section = "B"
)

type TestType string

const (
	TypeSectionA TestType = "section-a"
	TypeSectionB TestType = "section-b"
)

func (t TestType) Section() Section {
	if t == TypeSectionB {
		return SectionB
	}
	return SectionA
}

type QuestionType string

const (
	FillBlank  QuestionType = "fill-blank"
	MCQ        QuestionType = "mcq"
	MatchPairs QuestionType = "match-pairs"
	Spelling   QuestionType = "spelling"
)

type Question struct {
	ID       string
	Type     QuestionType
	Prompt   string
	Answer   string
	Options  []string
	Category string
}

// SectionAQuestions is the Q&A bank asked in order, wrapping around.
var SectionAQuestions = []Question{
	{ID: "1", Type: FillBlank, Prompt: "The animal that gives us milk is a ______.", Answer: "cow", Category: "Animals"},
	{ID: "2", Type: MCQ, Prompt: "Which one is a domestic animal?", Answer: "B. Cow",
		Options: []string{"A. Lion", "B. Cow", "C. Tiger", "D. Wolf"}, Category: "Animals"},
	{ID: "3", Type: MatchPairs, Prompt: "Match: Fruit with Mango", Answer: "1 with A", Category: "Food"},
	{ID: "4", Type: FillBlank, Prompt: "The sun rises in the ______.", Answer: "east", Category: "Geography"},
}

var (
	Grades   = []string{"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6", "Grade 7", "Grade 8", "Grade 9", "Grade 10"}
	Subjects = []string{"English", "EVS", "Life Skills", "Computer", "Math", "Social Science", "Kannada", "Science"}
)

// Setup is what the teacher fills in before a test starts.
type Setup struct {
	Type     TestType `validate:"oneof=section-a section-b"`
	Grade    string   `validate:"required"`
	Subject  string   `validate:"required"`
	Topic    string   `validate:"required"`
	Language string
	// Words is the spelling list, required for Section B.
	Words []string
}

// Validate reports the first missing or invalid field.
func (s Setup) Validate() error {
	if err := state.Validator().Struct(s); err != nil {
		return errors.Errorf("please fill in all required fields: %s", state.Explain(err))
	}
	if s.Type == TypeSectionB && len(s.Words) == 0 {
		return ErrWordListRequired
	}
	return nil
}

type Phase int

const (
	PhaseSetup Phase = iota
	PhaseReady
	PhaseRecording
	PhaseProcessing
	PhaseReviewed
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseRecording:
		return "recording"
	case PhaseProcessing:
		return "processing"
	case PhaseReviewed:
		return "reviewed"
	}
	return "setup"
}

// Recorder opens the microphone.
type Recorder interface {
	Start(ctx context.Context) (Recording, error)
}

// Recording is an open microphone capture.
type Recording interface {
	// Samples returns the newest mono samples in [-1, 1].
	Samples() []float64
	// Stop ends the capture and returns the recorded audio.
	Stop() ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, lang language.Tag) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string, lang language.Tag) error
}

// Outcome is the checked answer shown to the teacher.
type Outcome struct {
	Answer   string
	Correct  bool
	Feedback string
}

type Session struct {
	mu        sync.Mutex
	setup     Setup
	phase     Phase
	questions []Question
	index     int
	outcome   Outcome
	recording Recording
	starting  bool
	started   time.Time
	duration  int
	results   []Result
	meter     *Meter

	recorder    Recorder
	transcriber Transcriber
	speaker     Speaker
	now         func() time.Time
	newID       func() string
	log         *slog.Logger
}

type Option func(*Session)

func WithRecorder(r Recorder) Option       { return func(s *Session) { s.recorder = r } }
func WithTranscriber(t Transcriber) Option { return func(s *Session) { s.transcriber = t } }
func WithSpeaker(sp Speaker) Option        { return func(s *Session) { s.speaker = sp } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		phase: PhaseSetup,
		meter: NewMeter(),
		now:   time.Now,
		newID: uuid.NewString,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates setup and asks the first question.
func (s *Session) Start(setup Setup) error {
	if err := setup.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSetup {
		return errors.Wrapf(ErrWrongPhase, "start in %s", s.phase)
	}

	s.setup = setup
	if setup.Type == TypeSectionB {
		s.questions = make([]Question, len(setup.Words))
		for i, w := range setup.Words {
			s.questions[i] = Question{ID: fmt.Sprint(i + 1), Type: Spelling, Prompt: w, Answer: w}
		}
	} else {
		s.questions = SectionAQuestions
	}
	s.index = 0
	s.resetAttemptLocked()
	s.phase = PhaseReady
	s.log.Info("live test started", "section", setup.Type.Section(), "grade", setup.Grade,
		"subject", setup.Subject, "questions", len(s.questions))
	return nil
}

// End returns to setup. Results are kept.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording != nil {
		if _, err := s.recording.Stop(); err != nil {
			s.log.Warn("stop recording", "err", err)
		}
		s.recording = nil
	}
	s.phase = PhaseSetup
	s.questions = nil
	s.resetAttemptLocked()
}

func (s *Session) resetAttemptLocked() {
	s.outcome = Outcome{}
	s.duration = 0
	s.meter.Reset()
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Section() Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setup.Type.Section()
}

// Current returns the question being asked.
func (s *Session) Current() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Outcome returns the last checked answer.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

func (s *Session) speechTag() language.Tag {
	return SpeechTag(s.setup.Language)
}

func (s *Session) promptLocked() string {
	q := s.questions[s.index]
	if s.setup.Type == TypeSectionB {
		return "Spell the word: " + q.Prompt
	}
	return q.Prompt
}

// StartRecording reads the question aloud and then opens the microphone,
// so the prompt never ends up in the answer audio.
func (s *Session) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseReady || s.starting {
		phase := s.phase
		s.mu.Unlock()
		return errors.Wrapf(ErrWrongPhase, "record in %s", phase)
	}
	if s.recorder == nil {
		s.mu.Unlock()
		return ErrNoMicrophone
	}
	s.starting = true
	question := s.index
	prompt, tag := s.promptLocked(), s.speechTag()
	s.mu.Unlock()

	s.speak(ctx, prompt, tag)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false
	if s.phase != PhaseReady || s.index != question {
		return errors.Wrapf(ErrWrongPhase, "record in %s", s.phase)
	}
	rec, err := s.recorder.Start(ctx)
	if err != nil {
		return errors.Wrap(err, "open microphone")
	}
	s.recording = rec
	s.started = s.now()
	s.resetAttemptLocked()
	s.phase = PhaseRecording
	return nil
}

// Level is the live microphone level, 0 to 100. It is 0 when not recording.
func (s *Session) Level() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRecording || s.recording == nil {
		return 0
	}
	return s.meter.Level(s.recording.Samples())
}

// Elapsed is the recording length in whole seconds.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseRecording {
		return int(s.now().Sub(s.started) / time.Second)
	}
	return s.duration
}

// StopRecording ends the capture, transcribes it and checks the answer.
// A failed transcription returns the session to Ready for another try.
func (s *Session) StopRecording(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.phase != PhaseRecording {
		s.mu.Unlock()
		return Outcome{}, errors.Wrapf(ErrWrongPhase, "stop in %s", s.phase)
	}
	rec := s.recording
	s.recording = nil
	s.duration = int(s.now().Sub(s.started) / time.Second)
	s.phase = PhaseProcessing
	tag := s.speechTag()
	s.mu.Unlock()

	text, err := s.transcribe(ctx, rec, tag)
	if err != nil {
		s.mu.Lock()
		s.phase = PhaseReady
		s.mu.Unlock()
		return Outcome{}, err
	}
	return s.check(ctx, text, PhaseProcessing)
}

func (s *Session) transcribe(ctx context.Context, rec Recording, tag language.Tag) (string, error) {
	audio, err := rec.Stop()
	if err != nil {
		return "", errors.Wrap(err, "stop recording")
	}
	if s.transcriber == nil {
		return "", ErrNoTranscriber
	}
	text, err := s.transcriber.Transcribe(ctx, audio, tag)
	if err != nil {
		return "", errors.Wrap(err, "transcribe")
	}
	return text, nil
}

// Answer checks a typed answer in place of a recording.
func (s *Session) Answer(ctx context.Context, text string) (Outcome, error) {
	s.mu.Lock()
	phase := s.phase
	s.mu.Unlock()
	if phase != PhaseReady && phase != PhaseReviewed {
		return Outcome{}, errors.Wrapf(ErrWrongPhase, "answer in %s", phase)
	}
	return s.check(ctx, text, phase)
}

func (s *Session) check(ctx context.Context, text string, from Phase) (Outcome, error) {
	s.mu.Lock()
	if s.phase != from {
		s.mu.Unlock()
		return Outcome{}, errors.Wrapf(ErrWrongPhase, "check in %s", s.phase)
	}
	section := s.setup.Type.Section()
	correct := s.questions[s.index].Answer
	out := Outcome{Answer: strings.TrimSpace(text), Correct: Match(section, text, correct)}
	switch {
	case out.Correct:
		out.Feedback = "Correct! Great job."
	case section == SectionB:
		out.Feedback = fmt.Sprintf("Try again. The correct spelling is %s.", SpellOut(correct))
	default:
		out.Feedback = fmt.Sprintf("Try again. The correct answer is %s.", correct)
	}
	s.outcome = out
	s.phase = PhaseReviewed
	tag := s.speechTag()
	s.mu.Unlock()

	s.speak(ctx, out.Feedback, tag)
	return out, nil
}

// Retake discards the checked answer and asks the same question again.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReviewed {
		return errors.Wrapf(ErrWrongPhase, "retake in %s", s.phase)
	}
	s.resetAttemptLocked()
	s.phase = PhaseReady
	return nil
}

// Submit records the reviewed attempt for student and moves on to the
// next question, wrapping at the end of the list.
func (s *Session) Submit(student string) (Result, error) {
	student = strings.TrimSpace(student)
	if student == "" {
		return Result{}, ErrStudentRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReviewed {
		return Result{}, errors.Wrapf(ErrWrongPhase, "submit in %s", s.phase)
	}

	q := s.questions[s.index]
	section := s.setup.Type.Section()
	res := Result{
		ID:            s.newID(),
		Timestamp:     s.now(),
		Student:       student,
		Section:       section,
		QuestionType:  q.Type,
		Question:      q.Prompt,
		CorrectAnswer: q.Answer,
		StudentAnswer: s.outcome.Answer,
		Correct:       s.outcome.Correct,
		Duration:      s.duration,
	}
	if section == SectionB {
		res.Question = fmt.Sprintf("Spell: %q", q.Prompt)
	}
	s.results = append(s.results, res)

	s.index = (s.index + 1) % len(s.questions)
	s.resetAttemptLocked()
	s.phase = PhaseReady
	s.log.Debug("attempt submitted", "student", student, "correct", res.Correct)
	return res, nil
}

// Results returns every submitted attempt, newest first.
func (s *Session) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.results))
	for i, r := range s.results {
		out[len(s.results)-1-i] = r
	}
	return out
}

func (s *Session) Stats() Stats {
	return Summarize(s.Results())
}

func (s *Session) speak(ctx context.Context, text string, tag language.Tag) {
	if s.speaker == nil {
		return
	}
	if err := s.speaker.Speak(ctx, text, tag); err != nil {
		s.log.Warn("speak", "err", err)
	}
}
