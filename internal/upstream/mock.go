// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import "context"

// MockClient is a fixed-response, in-memory implementation of Client for
// Router and Translator tests, so neither depends on a live backend.
type MockClient struct {
	Models      []ModelInfo
	ChatResult  *ChatResult
	ChatChunks  []ChatChunk
	EmbedResult *EmbedResult
	Err         error

	LastChatParams  ChatParams
	LastEmbedParams EmbedParams
}

// ListModels implements Client.
func (m *MockClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Models, nil
}

// Chat implements Client.
func (m *MockClient) Chat(ctx context.Context, params ChatParams) (*ChatResult, error) {
	m.LastChatParams = params
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ChatResult, nil
}

// ChatStream implements Client, replaying the fixed ChatChunks over a
// channel with the same one-for-one pull semantics the real client offers.
func (m *MockClient) ChatStream(ctx context.Context, params ChatParams) (<-chan ChatChunk, error) {
	m.LastChatParams = params
	if m.Err != nil {
		return nil, m.Err
	}

	out := make(chan ChatChunk)
	go func() {
		defer close(out)
		for _, chunk := range m.ChatChunks {
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Embed implements Client.
func (m *MockClient) Embed(ctx context.Context, params EmbedParams) (*EmbedResult, error) {
	m.LastEmbedParams = params
	if m.Err != nil {
		return nil, m.Err
	}
	return m.EmbedResult, nil
}
