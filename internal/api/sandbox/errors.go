package sandbox

import (
	"errors"
	"fmt"

	"github.com/taskflow/client/internal/core/domain"
)

var (
	ErrInvalidToken = errors.New("could not validate credentials")
	ErrEmailTaken   = fmt.Errorf("%w: email already registered", domain.ErrValidation)
	ErrInactiveUser = fmt.Errorf("%w: inactive user", domain.ErrValidation)
	ErrTaskNotFound = fmt.Errorf("%w: task not found", domain.ErrNotFound)
)
