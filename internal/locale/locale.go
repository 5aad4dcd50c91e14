// Package locale holds the bilingual (English/Arabic) static copy used by
// the client. Dynamic content (questions, reading prompts) arrives from the
// server already localized; only fixed labels live here.
package locale

// Lang is a supported language code.
type Lang string

const (
	English Lang = "en"
	Arabic  Lang = "ar"
)

// Valid reports whether l is one of the two supported codes.
func (l Lang) Valid() bool {
	return l == English || l == Arabic
}

// Name returns the display name of the language in its own script.
func (l Lang) Name() string {
	if l == Arabic {
		return "العربية"
	}
	return "English"
}

// Default is the language used before the user has picked one.
const Default = English

// Supported lists the selectable languages in display order.
var Supported = []Lang{English, Arabic}

// Text is a label available in both supported languages.
type Text struct {
	EN string
	AR string
}

// In returns the text for the given language, falling back to English for
// any unrecognized code.
func (t Text) In(l Lang) string {
	if l == Arabic {
		return t.AR
	}
	return t.EN
}

// Static labels.
var (
	LoadingQuestions = Text{
		EN: "Loading questions...",
		AR: "جاري تحميل الأسئلة...",
	}

	AnswerAllPrompt = Text{
		EN: "Please answer all questions before continuing.",
		AR: "يرجى الإجابة على جميع الأسئلة قبل المتابعة.",
	}

	MicrophoneDenied = Text{
		EN: "Could not access microphone. Please check permissions.",
		AR: "تعذر الوصول إلى الميكروفون. يرجى التحقق من الأذونات.",
	}

	ContentFetchFailed = Text{
		EN: "Could not fetch content. Please check your connection and try again.",
		AR: "تعذر جلب المحتوى. يرجى التحقق من الاتصال والمحاولة مرة أخرى.",
	}

	SubmitFailed = Text{
		EN: "Upload failed. Please try again.",
		AR: "فشل الإرسال. يرجى المحاولة مرة أخرى.",
	}

	// ChatUnavailable is appended to the transcript in place of a raw
	// transport error when a chat round-trip fails.
	ChatUnavailable = Text{
		EN: "Sorry, I could not reach the assistant right now. Please check your connection and send your message again.",
		AR: "عذرا، تعذر الوصول إلى المساعد الآن. يرجى التحقق من الاتصال وإرسال رسالتك مرة أخرى.",
	}
)
