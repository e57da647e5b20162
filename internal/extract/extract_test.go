package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

var pngImage = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

const payload = `{
  "meta": {"currency": "USD", "notes": ""},
  "participants": [{"id": "alice", "name": "Alice"}, {"id": "bob", "name": "Bob"}],
  "line_items": [{"id": "i1", "description": "Pizza", "quantity": 1, "unit_price": 20, "total_price": 20}],
  "split_logic": [{"item_id": "i1", "method": "equal", "allocations": [
    {"participant_id": "alice", "weight": 1}, {"participant_id": "bob", "weight": 1}
  ]}],
  "additional_charges": [{"id": "tip", "label": "Tip", "source": "user_prompt", "type": "percentage", "value": 18}]
}`

func textResponse(text string) *MessageResponse {
	return &MessageResponse{
		Model:      DefaultModel,
		Content:    []ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
		Usage:      TokenUsage{InputTokens: 1200, OutputTokens: 300},
	}
}

func TestExtract_Success(t *testing.T) {
	client := new(MockClient)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req MessageRequest) bool {
		return req.MediaType == "image/png" &&
			req.System == SystemPrompt &&
			req.Model == DefaultModel &&
			req.MaxTokens == DefaultMaxTokens &&
			strings.Contains(req.Text, "Alice and Bob split the pizza")
	})).Return(textResponse("Here you go:\n```json\n"+payload+"\n```"), nil)

	svc := NewService(client, Config{})
	raw, err := svc.Extract(context.Background(), Request{
		Image:        pngImage,
		Instructions: "Alice and Bob split the pizza, 18% tip",
	})

	require.NoError(t, err)
	require.Len(t, raw.Participants, 2)
	assert.Equal(t, "Pizza", raw.LineItems[0].Description.Value)
	assert.Equal(t, 18.0, raw.AdditionalCharges[0].Value.Value)
	client.AssertExpectations(t)
}

func TestExtract_InstructionsOnly(t *testing.T) {
	client := new(MockClient)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req MessageRequest) bool {
		return len(req.Image) == 0 && strings.Contains(req.Text, "No receipt image")
	})).Return(textResponse(payload), nil)

	_, err := NewService(client, Config{}).Extract(context.Background(), Request{Instructions: "Pizza $20, split two ways"})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(client *MockClient)
		cfg     Config
		req     Request
		wantErr error
	}{
		{
			name:    "empty request",
			req:     Request{Instructions: "   "},
			wantErr: ErrEmptyRequest,
		},
		{
			name:    "image too large",
			cfg:     Config{MaxImageBytes: 16},
			req:     Request{Image: pngImage},
			wantErr: ErrInvalidImage,
		},
		{
			name:    "unsupported media type",
			req:     Request{Image: []byte("definitely not an image")},
			wantErr: ErrInvalidImage,
		},
		{
			name:    "declared media type is checked",
			req:     Request{Image: pngImage, MediaType: "application/pdf"},
			wantErr: ErrInvalidImage,
		},
		{
			name: "upstream failure",
			setup: func(client *MockClient) {
				client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("529 overloaded"))
			},
			req:     Request{Image: pngImage},
			wantErr: ErrUpstream,
		},
		{
			name: "prose instead of JSON",
			setup: func(client *MockClient) {
				client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("I can't read this receipt."), nil)
			},
			req:     Request{Image: pngImage},
			wantErr: ErrMalformedResponse,
		},
		{
			name: "JSON missing required arrays",
			setup: func(client *MockClient) {
				client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(`{"participants": []}`), nil)
			},
			req:     Request{Image: pngImage},
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockClient)
			if tt.setup != nil {
				tt.setup(client)
			}

			raw, err := NewService(client, tt.cfg).Extract(context.Background(), tt.req)

			assert.Nil(t, raw)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			client.AssertExpectations(t)
		})
	}
}

func TestExtract_MissingCredentials(t *testing.T) {
	_, err := NewService(nil, Config{}).Extract(context.Background(), Request{Instructions: "x"})
	assert.True(t, errors.Is(err, ErrMissingCredentials))
}

func TestExtract_Canceled(t *testing.T) {
	client := new(MockClient)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(client, Config{}).Extract(ctx, Request{Instructions: "x"})
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	client.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestUserText(t *testing.T) {
	assert.Equal(t, "User Instructions: Bob had the fries", userText("  Bob had the fries ", true))
	assert.Contains(t, userText("", true), "(none)")
}
