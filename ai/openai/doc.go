// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP APIs via langchaingo. It works with the hosted OpenAI service as
// well as local compatible servers such as Ollama or vLLM.
package openai
