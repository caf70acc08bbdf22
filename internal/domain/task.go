package domain

// ClipRef is an opaque handle to one captured utterance. The audio store owns
// the backing storage; every holder must Release its reference when done.
type ClipRef interface {
	Path() string
	Retain()
	Release()
}

// Task is one unit of translation work for a single recipient.
// Values are never mutated after construction; a Task has no identity beyond
// its position in the worker queue.
type Task struct {
	Clip       ClipRef
	SourceLang Language
	TargetLang Language
	RoomID     RoomID
	Recipient  SessionID
}

// Result carries one finished translation, consumed immediately by delivery.
type Result struct {
	OriginalText   string
	TranslatedText string
	Audio          []byte
	RoomID         RoomID
	Recipient      SessionID
}
