package ai

import (
	"fmt"
	"strings"
)

// AllowedCategories are the offer categories the app knows about.
var AllowedCategories = []string{
	"Jardinage",
	"Bricolage",
	"Ménage",
	"Restauration / Extra",
	"DJ / Sono",
	"Baby-sitting",
	"Transport / Livraison",
	"Informatique",
	"Autre",
}

// BuildCleanupPrompt builds the prompts for transcript cleanup.
func BuildCleanupPrompt(transcript, language string) (string, string) {
	systemPrompt := `Tu corriges des transcriptions automatiques de messages vocaux courts.
Règles :
- Corrige les erreurs de reconnaissance évidentes, l'orthographe et la ponctuation.
- Supprime les répétitions, hésitations et mots parasites.
- N'ajoute AUCUNE information absente de la transcription.
- Conserve la langue d'origine.
Réponds uniquement avec un objet JSON : {"cleaned_text": "…", "decoded_words": ["erreur → correction"]}`

	userPrompt := fmt.Sprintf("Langue : %s\nTranscription brute :\n\"\"\"\n%s\n\"\"\"", language, transcript)
	return systemPrompt, userPrompt
}

// BuildHintDraftPrompt builds the prompts that turn a short user hint into a
// service request ("Je recherche…").
func BuildHintDraftPrompt(in DraftInput) (string, string) {
	systemPrompt := fmt.Sprintf(`Tu écris des DEMANDES de services courtes pour des particuliers en Guadeloupe et en Martinique.
Ton objectif : produire un JSON STRICT (sans markdown) avec un titre et une description courte (1–2 phrases) commençant par "Je recherche…".
La description doit mentionner clairement le métier, la tâche et le secteur/ville. Ajoute éventuellement l'urgence et/ou un budget si ces éléments sont présents dans l'indice.

Contraintes et champs :
- Titre : court, accrocheur, max 60 caractères.
- Description : 1–2 phrases, commence par "Je recherche…".
- Catégories autorisées : %s.
- Ville : si non déduite du texte, conserve "%s" ou vide.
- Code postal : si connu, sinon vide.

Réponds UNIQUEMENT avec un objet JSON valide :
{
  "title": "…",
  "description": "Je recherche …",
  "category": "…",
  "city": "…",
  "postalCode": "…"
}`, strings.Join(AllowedCategories, ", "), in.City)

	userPrompt := fmt.Sprintf("Indice utilisateur (lang=%s):\n%s\n\nVille fournie: %s\nCatégorie fournie: %s",
		in.Lang, in.Hint, in.City, in.Category)
	return systemPrompt, userPrompt
}

// BuildTranscriptDraftPrompt builds the prompts that turn a voice transcript
// into a full offer.
func BuildTranscriptDraftPrompt(transcript, city, category string) (string, string) {
	systemPrompt := fmt.Sprintf(`Tu es un assistant de rédaction d'annonces pour une app de services.
À partir d'une transcription brute, génère un JSON STRICT (pas de markdown) :

{
  "title": "…",
  "description": "…",
  "category": "…",
  "city": "…",
  "postalCode": "…"
}

Règles :
- Titre court (max 60 caractères)
- Description pro (150-300 mots)
- Ne pas inventer de prix, téléphone, infos perso
- Garder le français
- Catégorie fournie: %s
- Ville fournie: %s`, category, city)

	return systemPrompt, "Transcription : " + transcript
}
