package insight

import (
	"encoding/json"
	"fmt"

	"github.com/Nethaiah/commitlens/models"
)

// BuildPrompt embeds the stats snapshot into the structured prompt the
// text model answers with a JSON paragraph list.
func BuildPrompt(snapshot models.StatsSnapshot) string {
	summary, _ := json.Marshal(snapshot)
	return fmt.Sprintf(`You are an assistant that writes concise, paragraph-based developer productivity insights.
Use the provided JSON to produce 2-4 short paragraphs that summarize:
- Overall activity and commit volume for the selected repository (or all repositories).
- Peak performance day and its average commits.
- Language focus (dominant language and its percentage).
- Consistency (current streak and record).
If countMode is provided, include a brief note about how this counting mode affects interpretation (e.g., All Authored vs Contributions).

Return ONLY a JSON object:
{
  "paragraphs": ["<paragraph1>", "<paragraph2>", "<paragraph3>"]
}

Rules:
- No extra commentary.
- Keep paragraphs concise and non-repetitive.
- If data is insufficient, infer best effort from recent weeks.

Data:
%s`, summary)
}
