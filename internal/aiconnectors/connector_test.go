package aiconnectors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/gradeassist/internal/feedback"
	"github.com/gradeassist/internal/retry"
	"github.com/gradeassist/pkg/models"
)

// fakeModel replays scripted replies and records the prompts it saw
type fakeModel struct {
	replies []string
	errs    []error
	prompts []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	i := len(f.prompts) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Enabled = true
	opts.Retry = retry.Config{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	return opts
}

func TestSubjectSource_CleansReply(t *testing.T) {
	model := &fakeModel{replies: []string{"\"A product listing with a cart.\"\nExtra commentary"}}
	source := NewSubjectSource(NewConnectorWithModel(model, testOptions()))

	subject, err := source.Subject(context.Background(), models.Instructions{
		AssignmentText:  "Build a React product listing page with a shopping cart.",
		AdditionalNotes: "Focus on state handling",
	})
	require.NoError(t, err)
	assert.Equal(t, "A product listing with a cart", subject)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Build a React product listing page")
	assert.Contains(t, model.prompts[0], "Focus on state handling")
}

func TestSubjectSource_RetriesTransientFailures(t *testing.T) {
	model := &fakeModel{
		errs:    []error{errors.New("429 too many requests"), nil},
		replies: []string{"", "a weather dashboard"},
	}
	source := NewSubjectSource(NewConnectorWithModel(model, testOptions()))

	subject, err := source.Subject(context.Background(), models.Instructions{AssignmentText: "Build a weather dashboard"})
	require.NoError(t, err)
	assert.Equal(t, "a weather dashboard", subject)
	assert.Len(t, model.prompts, 2)
}

func TestSubjectSource_EmptyReply(t *testing.T) {
	model := &fakeModel{replies: []string{"  ...  "}}
	source := NewSubjectSource(NewConnectorWithModel(model, testOptions()))

	_, err := source.Subject(context.Background(), models.Instructions{AssignmentText: "Write a parser"})
	assert.ErrorIs(t, err, ErrEmptySubject)
}

func TestSubjectSource_NoInstructions(t *testing.T) {
	model := &fakeModel{}
	source := NewSubjectSource(NewConnectorWithModel(model, testOptions()))

	subject, err := source.Subject(context.Background(), models.Instructions{})
	require.NoError(t, err)
	assert.Empty(t, subject)
	assert.Empty(t, model.prompts)
}

func TestSubjectSource_ComposerFallsBackOnFailure(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("invalid api key")}}
	source := NewSubjectSource(NewConnectorWithModel(model, testOptions()))
	composer := feedback.NewComposer(feedback.WithSubjectSource(source))

	draft, err := composer.ComposeContext(context.Background(), nil,
		models.Instructions{AssignmentText: "Build a todo app"},
		models.StyleProfile{TeacherID: "t", FocusAreas: []string{"testing"}})
	require.NoError(t, err)
	assert.Contains(t, draft.Text, "todo app")
	assert.Len(t, model.prompts, 1, "non-transient errors are not retried")
}

func TestOptions_Validate(t *testing.T) {
	opts := DefaultOptions()
	assert.NoError(t, opts.Validate(), "disabled connectors are not validated")

	opts.Enabled = true
	assert.NoError(t, opts.Validate())

	opts.Provider = ProviderOpenAI
	assert.ErrorContains(t, opts.Validate(), "api_key")

	opts.Provider = "watson"
	assert.ErrorContains(t, opts.Validate(), "unsupported provider")

	opts.Provider = ProviderOllama
	opts.Model = ""
	assert.ErrorContains(t, opts.Validate(), "model")
}

func TestCheckOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest","size":1}]}`))
	}))
	defer server.Close()

	opts := testOptions()
	opts.BaseURL = server.URL
	assert.NoError(t, CheckOllama(context.Background(), opts))

	opts.Model = "mistral"
	assert.ErrorContains(t, CheckOllama(context.Background(), opts), "not found")
}

func TestCleanSubject(t *testing.T) {
	assert.Equal(t, "a CLI tool", cleanSubject("  `a CLI tool`.  "))
	assert.Equal(t, "first", cleanSubject("first\nsecond"))
	assert.Equal(t, "", cleanSubject(""))
}
