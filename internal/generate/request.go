package generate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/partition"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/session"
)

// Request is one validated "start" action.
type Request struct {
	InputPath   string
	OutputDir   string `validate:"required"`
	PhoneColumn string `validate:"required,alpha"`
	LinkColumn  string `validate:"required,alpha"`
	GroupBy     bool
	GroupColumn string `validate:"required_if=GroupBy true,omitempty,alpha"`
	ChunkSize   int    `validate:"required_unless=GroupBy true,omitempty,gt=0"`
	Template    string
	Where       string
}

// InputError lists user-facing problems with a Request. The run is not started.
type InputError struct {
	Messages []string
}

func (e *InputError) Error() string {
	return strings.Join(e.Messages, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var messages = map[string]string{
	"OutputDir.required":        "Please provide the output directory",
	"PhoneColumn.required":      "Please provide the phone column",
	"PhoneColumn.alpha":         "The phone column must be column letters",
	"LinkColumn.required":       "Please provide the hyperlink column",
	"LinkColumn.alpha":          "The hyperlink column must be column letters",
	"GroupColumn.required_if":   "Please provide the column for splitting by value",
	"GroupColumn.alpha":         "The column for splitting by value must be column letters",
	"ChunkSize.required_unless": "Please provide the chunk size",
	"ChunkSize.gt":              "The chunk size must be greater than zero",
}

// Validate checks the request in the order the fields are presented to the
// user and returns an *InputError describing every problem.
func (r Request) Validate() error {
	r.normalize()
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &InputError{}
	for _, fe := range verrs {
		msg, ok := messages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
		}
		out.Messages = append(out.Messages, msg)
	}
	return out
}

func (r *Request) normalize() {
	r.OutputDir = strings.TrimSpace(r.OutputDir)
	r.PhoneColumn = strings.ToUpper(strings.TrimSpace(r.PhoneColumn))
	r.LinkColumn = strings.ToUpper(strings.TrimSpace(r.LinkColumn))
	r.GroupColumn = strings.ToUpper(strings.TrimSpace(r.GroupColumn))
}

// Spec builds the partition spec for the request.
func (r Request) Spec() partition.Spec {
	if r.GroupBy {
		return partition.ByColumn(r.GroupColumn, r.ChunkSize)
	}
	return partition.ByChunkSize(r.ChunkSize)
}

// State converts the request into remembered session state.
func (r Request) State() *session.State {
	return &session.State{
		FilePath:        r.InputPath,
		OutputPath:      r.OutputDir,
		BranchColumn:    r.GroupColumn,
		PhoneColumn:     r.PhoneColumn,
		HyperlinkColumn: r.LinkColumn,
		FormatString:    r.Template,
		ChunkSize:       strconv.Itoa(r.ChunkSize),
		SplitByBranch:   r.GroupBy,
		Where:           r.Where,
	}
}

// RequestFromState rebuilds a request from remembered session state.
func RequestFromState(s *session.State) (Request, error) {
	req := Request{
		InputPath:   s.FilePath,
		OutputDir:   s.OutputPath,
		PhoneColumn: s.PhoneColumn,
		LinkColumn:  s.HyperlinkColumn,
		GroupBy:     s.SplitByBranch,
		GroupColumn: s.BranchColumn,
		Template:    s.FormatString,
		Where:       s.Where,
	}
	if cs := strings.TrimSpace(s.ChunkSize); cs != "" {
		n, err := strconv.Atoi(cs)
		if err != nil {
			return req, fmt.Errorf("invalid chunk size %q in session state: %w", s.ChunkSize, err)
		}
		req.ChunkSize = n
	}
	return req, nil
}
