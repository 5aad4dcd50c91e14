package api

// QuestionDef is one question definition as served by GET /questions. The
// prompt and choice list come in both supported languages; ChoicesEN and
// ChoicesAR are parallel lists (same option at the same index).
type QuestionDef struct {
	Category   string   `json:"category"`
	QuestionEN string   `json:"question_en"`
	QuestionAR string   `json:"question_ar"`
	Format     string   `json:"format"` // "choices" or "text"
	ChoicesEN  []string `json:"choices_list_en,omitempty"`
	ChoicesAR  []string `json:"choices_list_ar,omitempty"`
}

// ReadingPrompt is one passage the user reads aloud, with its phonetic
// transcription, as served by GET /request_text.
type ReadingPrompt struct {
	Text     string `json:"text"`
	Phonemes string `json:"phonemes"`
}

// UploadPayload is the JSON form field sent alongside the audio artifact in
// POST /upload: the full answer set plus the source text and phonemes of the
// submitted recording.
type UploadPayload struct {
	Data     map[string]string `json:"data"`
	Text     string            `json:"text"`
	Phonemes string            `json:"phonemes"`
}

// ChatReply is the assistant's answer from POST /chatbot. Accepted is false
// when the agent declined the message (off-topic or out of scope); Response
// still carries user-presentable copy in that case.
type ChatReply struct {
	Accepted bool   `json:"accepted_msg"`
	Response string `json:"response"`
}
