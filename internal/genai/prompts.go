package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hazemdh/leadbot-go/internal/corpus"
)

// GenerationSystemPrompt frames every generation request.
const GenerationSystemPrompt = `Tu génères des conversations de prospection commerciale en dialecte tunisien (mélange d'arabe tunisien translittéré et de français), entre un contact (prospect) et un conseiller.

Réponds UNIQUEMENT avec un tableau JSON de conversations. Chaque conversation a la forme :
{"status": "<intention>", "summary": "<résumé court>", "messages": [{"sender_type": "contact"|"user", "text": "<message>"}]}

Pas de texte hors du JSON.`

// CleaningSystemPrompt frames every cleaning request.
const CleaningSystemPrompt = `Tu nettoies des conversations de prospection commerciale en dialecte tunisien. Corrige l'orthographe évidente, retire les répétitions et le bruit, garde le sens, le dialecte et le ton d'origine.

Réponds UNIQUEMENT avec le tableau JSON des conversations nettoyées, même structure que l'entrée, même ordre, même nombre de conversations. Pas de texte hors du JSON.`

// AugmentPrompt asks for count new conversations for one intent, seeded
// with real examples of that intent.
func AugmentPrompt(status string, count int, examples []corpus.Conversation) (string, error) {
	sampleJSON, err := json.Marshal(examples)
	if err != nil {
		return "", fmt.Errorf("marshal examples: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Génère exactement %d nouvelles conversations avec le status %q.\n\n", count, status)
	b.WriteString("Inspire-toi du style, de la longueur et du vocabulaire de ces exemples réels sans les recopier :\n\n")
	b.Write(sampleJSON)
	return b.String(), nil
}

// CleanPrompt wraps one batch of conversations for the cleaning pass.
func CleanPrompt(batch []corpus.Conversation) (string, error) {
	batchJSON, err := json.Marshal(batch)
	if err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Nettoie ces %d conversations :\n\n", len(batch))
	b.Write(batchJSON)
	return b.String(), nil
}
