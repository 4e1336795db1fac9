package intake

import "leadflow_backend/internal/leads/domain"

// Canned reply templates keyed by intent. The classification picks the
// template; priority only annotates the wording, never the choice.
var responseTemplates = map[string]string{
	domain.IntentBudget: "Obrigado pelo interesse! Para montar um orçamento, me conte um pouco mais " +
		"sobre o que você precisa e em breve um de nossos consultores envia os valores.",
	domain.IntentScheduling: "Claro! Me diga o melhor dia e horário para você e confirmamos o " +
		"agendamento em seguida.",
	domain.IntentSupport: "Entendi, vamos te ajudar com isso. Pode me dar mais detalhes do que está " +
		"acontecendo? Nossa equipe de suporte já foi avisada.",
	domain.IntentComplaint: "Sentimos muito pelo ocorrido. Sua mensagem foi registrada e um " +
		"responsável vai entrar em contato para resolver o quanto antes.",
	domain.IntentOther: "Recebemos sua mensagem! Em breve alguém da nossa equipe responde por aqui.",
}

const urgentPrefix = "[URGENTE] Vamos priorizar seu atendimento. "

// SelectResponse maps a classification to a canned reply. Unknown intents
// fall back to the default template; high priority prepends an urgency note
// within the same template.
func SelectResponse(c domain.Classification) string {
	template, ok := responseTemplates[c.Intent]
	if !ok {
		template = responseTemplates[domain.IntentOther]
	}

	if c.Priority == domain.PriorityHigh {
		return urgentPrefix + template
	}
	return template
}

// Fixed notices the orchestrator sends outside the template map.
const (
	textOnlyNotice = "Por enquanto só consigo entender mensagens de texto. " +
		"Pode me escrever o que você precisa?"
	apologyNotice = "Desculpe, tivemos um problema para processar sua mensagem. " +
		"Pode tentar novamente em instantes?"
)
