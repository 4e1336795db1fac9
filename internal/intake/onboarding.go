package intake

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

const (
	onboardingGreeting = "Olá%s! Que bom ter você por aqui. 👋"
	onboardingPresentation = "Somos a equipe de atendimento e vamos te acompanhar por este canal. " +
		"Pode mandar sua dúvida, pedido de orçamento ou agendamento a qualquer momento."
	onboardingExpectations = "Normalmente respondemos em poucos minutos no horário comercial. " +
		"Enquanto isso, me conte: como podemos te ajudar hoje?"
)

// Onboarder sends the fixed one-time welcome sequence to new contacts:
// greeting, presentation, expectations. Each send is preceded by a typing
// indicator and a short pacing delay, and is attempted independently: a
// failed step never aborts the remaining ones.
type Onboarder struct {
	transport Transport
	stepDelay time.Duration
	sleep     func(time.Duration)
	log       *logger.Logger
}

func NewOnboarder(transport Transport, cfg config.IntakeConfig, log *logger.Logger) *Onboarder {
	return &Onboarder{
		transport: transport,
		stepDelay: cfg.GetOnboardingStepDelay(),
		sleep:     time.Sleep,
		log:       log,
	}
}

// Run executes the sequence. It returns the texts that were actually
// delivered so the caller can record them in the lead's history. The
// delays run to completion once started; they gate nothing else.
func (o *Onboarder) Run(ctx context.Context, destination, displayName string) []string {
	name := ""
	if displayName != "" {
		name = " " + displayName
	}

	steps := []string{
		fmt.Sprintf(onboardingGreeting, name),
		onboardingPresentation,
		onboardingExpectations,
	}

	delivered := make([]string, 0, len(steps))
	for i, text := range steps {
		if err := o.transport.SetTyping(ctx, destination, true); err != nil {
			o.log.ChannelError("set_typing", destination, err)
		}
		o.sleep(o.stepDelay)

		if err := o.transport.SendText(ctx, destination, text); err != nil {
			o.log.ChannelError("onboarding_send", destination, err)
			o.log.Warn("onboarding step failed, continuing sequence", "step", i+1)
			continue
		}
		delivered = append(delivered, text)
	}

	if err := o.transport.SetTyping(ctx, destination, false); err != nil {
		o.log.ChannelError("set_typing", destination, err)
	}

	return delivered
}
