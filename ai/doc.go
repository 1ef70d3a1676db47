// Package ai defines the interfaces and configuration for the external
// AI backends: text embedding, chat completion, and summarization. The
// backends are black-box collaborators reached through a fixed
// request/response contract; concrete implementations live in subpackages
// (openai for OpenAI-compatible services, mock for tests).
package ai
