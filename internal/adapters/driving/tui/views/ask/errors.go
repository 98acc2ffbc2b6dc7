package ask

import "errors"

// ErrNoAnswerService indicates that no answer service was provided.
var ErrNoAnswerService = errors.New("answer service is required")
