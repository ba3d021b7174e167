package forwarding

import (
	"fmt"
	"strings"
	"time"

	"structwatch/internal/engine/notifications"
	"structwatch/internal/platform/models"
)

// renderEvent turns a stored notification into a webhook event body.
// Unknown types get a generic rendering so new ESI types are forwarded
// rather than dropped.
func renderEvent(owner *models.Owner, n *models.Notification) *Event {
	title, body := renderMessage(n)
	return &Event{
		ID:        fmt.Sprintf("evt_%d_%d", n.OwnerID, n.NotificationID),
		Event:     n.Type,
		Timestamp: n.Timestamp.Unix(),
		OwnerName: owner.CorporationName,
		Title:     title,
		Body:      body,
	}
}

func renderMessage(n *models.Notification) (string, string) {
	p, err := notifications.ParsePayload(n.Text)
	if err != nil {
		p = &notifications.Payload{}
	}

	subject := p.StructureName
	if subject == "" && p.StructureID != 0 {
		subject = fmt.Sprintf("structure %d", p.StructureID)
	}
	if subject == "" {
		subject = "a structure"
	}

	var lines []string
	addTime := func(label string, t time.Time) {
		if !t.IsZero() {
			lines = append(lines, fmt.Sprintf("%s: %s", label, t.Format(time.RFC1123)))
		}
	}

	var title string
	switch n.Type {
	case notifications.TypeStructureUnderAttack, notifications.TypeOrbitalAttacked, notifications.TypeTowerAlertMsg:
		title = fmt.Sprintf("%s is under attack", subject)
	case notifications.TypeStructureLostShields:
		title = fmt.Sprintf("%s has lost its shields", subject)
		addTime("Armor timer ends", p.RemainingAfter(n.Timestamp))
	case notifications.TypeStructureLostArmor:
		title = fmt.Sprintf("%s has lost its armor", subject)
		addTime("Hull timer ends", p.RemainingAfter(n.Timestamp))
	case notifications.TypeStructureDestroyed, notifications.TypeSovStructureDestroyed:
		title = fmt.Sprintf("%s has been destroyed", subject)
	case notifications.TypeStructureFuelAlert, notifications.TypeTowerResourceAlertMsg:
		title = fmt.Sprintf("%s is running low on fuel", subject)
	case notifications.TypeStructureServicesOffline:
		title = fmt.Sprintf("Services on %s went offline", subject)
	case notifications.TypeStructureWentLowPower:
		title = fmt.Sprintf("%s went into low power mode", subject)
	case notifications.TypeStructureWentHighPower:
		title = fmt.Sprintf("%s is back in high power mode", subject)
	case notifications.TypeStructureOnline:
		title = fmt.Sprintf("%s is online", subject)
	case notifications.TypeStructureAnchoring:
		title = fmt.Sprintf("%s has started anchoring", subject)
	case notifications.TypeStructureUnanchoring:
		title = fmt.Sprintf("%s has started unanchoring", subject)
	case notifications.TypeOwnershipTransferred:
		title = fmt.Sprintf("Ownership of %s has been transferred", subject)
	case notifications.TypeOrbitalReinforced:
		title = fmt.Sprintf("%s has been reinforced", subject)
		addTime("Comes out of reinforcement", p.ExitAt())
	case notifications.TypeMoonminingExtractionStarted:
		title = fmt.Sprintf("Moon extraction started at %s", subject)
		addTime("Ready", p.ReadyAt())
	case notifications.TypeMoonminingExtractionFinished:
		title = fmt.Sprintf("Moon extraction finished at %s", subject)
	case notifications.TypeMoonminingExtractionCancelled:
		title = fmt.Sprintf("Moon extraction cancelled at %s", subject)
	case notifications.TypeMoonminingLaserFired:
		title = fmt.Sprintf("Moon laser fired at %s", subject)
	case notifications.TypeMoonminingAutomaticFracture:
		title = fmt.Sprintf("Moon chunk auto-fractured at %s", subject)
	case notifications.TypeSovStructureReinforced:
		title = "A sovereignty structure has been reinforced"
		addTime("Nodes decloak", p.DecloakAt())
	case notifications.TypeSovCommandNodeEventStarted:
		title = "A command node event has started"
	case notifications.TypeEntosisCaptureStarted:
		title = fmt.Sprintf("Entosis capture started on %s", subject)
	default:
		title = n.Type
	}

	if p.SolarSystemID != 0 {
		lines = append(lines, fmt.Sprintf("Solar system: %d", p.SolarSystemID))
	}
	return title, strings.Join(lines, "\n")
}
