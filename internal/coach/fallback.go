package coach

import "github.com/sells-group/prospect-cli/internal/model"

// genericPitch is sent when no service has been configured.
func genericPitch(lead model.Lead) string {
	return "Olá " + lead.Name + ", tudo bem? Vi seu perfil e achei interessante o trabalho de vocês. Gostaria de conversar sobre uma oportunidade de parceria."
}

func fallbackPitch(lead model.Lead) string {
	return "Fala " + lead.Name + ", vi aqui que vocês estão deixando dinheiro na mesa sem um site profissional. Bora resolver isso hoje?"
}

const fallbackAudit = "1. ❌ Site não encontrado ou lento.\n2. ❌ Perfil do Google desatualizado.\n3. ❌ Ausência de funil de vendas."

func fallbackInsights() *model.ServiceInsights {
	return &model.ServiceInsights{
		RecommendedNiche: "Negócios Locais",
		SuggestedTicket:  model.DefaultTicketValue,
		Reasoning:        "Todos os negócios precisam de presença digital.",
		Potential:        "Alta demanda em todas as cidades.",
	}
}

func fallbackSequence() []model.SequenceStep {
	return []model.SequenceStep{
		{Day: 1, Trigger: "Curiosidade", Message: "Oi! Vi uma coisa no perfil de vocês que pode estar custando clientes. Posso te mostrar em 2 minutos?", Explanation: "Abre um loop que só se fecha com a resposta."},
		{Day: 2, Trigger: "Reciprocidade", Message: "Preparei uma análise rápida do seu negócio, sem custo. Quer que eu te mande?", Explanation: "Entregar valor antes de pedir algo gera vontade de retribuir."},
		{Day: 4, Trigger: "Prova Social", Message: "Ajudamos um negócio parecido com o seu a dobrar os contatos pelo WhatsApp em 30 dias.", Explanation: "Resultados de pares reduzem o risco percebido."},
		{Day: 7, Trigger: "Escassez", Message: "Tenho só mais duas vagas este mês para novos projetos. Quer garantir a sua?", Explanation: "Disponibilidade limitada acelera a decisão."},
		{Day: 10, Trigger: "Aversão à Perda", Message: "Última mensagem por aqui: cada semana sem ajustar isso são clientes indo para o concorrente. Se quiser, é só responder.", Explanation: "A despedida educada reativa quem estava em dúvida."},
	}
}

// openingLine starts every roleplay.
var openingLine = model.RoleplayMessage{
	Sender:   model.SenderAI,
	Text:     "Oi. Quem é e o que você quer? (Seja breve, tô ocupado)",
	Feedback: "O cliente iniciou a conversa com uma barreira defensiva. Tente quebrar o padrão ou gerar curiosidade imediata.",
	Score:    5,
}

var fallbackRoleplay = model.RoleplayMessage{
	Sender:   model.SenderAI,
	Text:     "Hmm... não sei. Me manda mais detalhes por escrito que eu vejo depois.",
	Feedback: "Não foi possível avaliar esta mensagem agora. Tente de novo.",
	Score:    5,
}
