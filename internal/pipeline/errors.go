package pipeline

import "github.com/nguyentantai21042004/voice-note/internal/apperr"

var (
	ErrNoFile        = apperr.New(apperr.KindValidation, "transcribe", "No file selected")
	ErrNoTranscript  = apperr.New(apperr.KindValidation, "refine", "No transcript available")
	ErrNoWorkingText = apperr.New(apperr.KindValidation, "generate", "No transcript or refined text available")
	ErrResetRequired = apperr.New(apperr.KindValidation, "select", "Reset the pipeline before choosing another file")
	ErrStepBusy      = apperr.New(apperr.KindValidation, "step", "This step is already running")
	ErrSessionReset  = apperr.New(apperr.KindValidation, "step", "The pipeline changed while the request was running")
)
