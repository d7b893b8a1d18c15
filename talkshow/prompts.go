package talkshow

import (
	"strings"
	"text/template"
)

const correctorSystemPrompt = `Tu es un assistant qui nettoie et valide des données JSON pour un programme de talk-show.
Ton objectif est de corriger les erreurs de frappe, de standardiser les formats et de rendre les données cohérentes.
Les règles sont :
- Le champ 'numero' doit être un entier. S'il contient du texte ou est invalide, remplace-le par 1.
- Le champ 'horaire' doit être un intervalle de temps clair.
- Les autres champs ('theme', 'date', 'lieu') doivent être conservés mais nettoyés de toute erreur évidente.
- Tu dois répondre UNIQUEMENT avec un objet JSON contenant exactement les clés "numero", "theme", "date", "horaire" et "lieu". N'ajoute aucun commentaire, texte ou formatage markdown.`

const correctorUserPrefix = "Voici le JSON à corriger : "

const talkShowTemplate = `Tu es un assistant qui génère un programme de Talk-Show en respectant ce format :

**TALK ACTE {{.Numero}} — Débats : {{.Theme}}**

📅 {{.Date}}
⏰ {{.Horaire}}
📍 {{.Lieu}}
Petite Intro max une phrase qui présente le sujet!
🔥 **Au programme :**
✅ une question pertinente et provocante liée au thème.
✅ une question pertinente et provocante liée au thème.
✅ une question pertinente et provocante liée au thème.
✅ une question pertinente et provocante liée au thème.

📲 RDV {{.Date}} de {{.Horaire}} ! Prépare tes questions. (Si l'horaire est une plage, reformule-le sous la forme "de HH:MM à HH:MM")

Instructions supplémentaires :
- Les emojis doivent être générés par toi de manière pertinente.
- Respecte scrupuleusement le format ci-dessus, en utilisant markdown pour le gras (**texte**) et les listes (* point).
- Les thèses doivent être des affirmations claires, concises et conçues pour susciter le débat sur le thème donné, sans être des conseils pratiques.
- Envoie uniquement le message !
- Ne jamais écrire en italique !
`

var talkShowTmpl = template.Must(template.New("talkshow").Option("missingkey=error").Parse(talkShowTemplate))

// RenderTalkShowPrompt substitutes d into the announcement template.
func RenderTalkShowPrompt(d CorrectedDetails) (string, error) {
	var b strings.Builder
	if err := talkShowTmpl.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}
