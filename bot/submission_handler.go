package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"circler/scoring"
	"circler/service"
)

// maxAttachmentBytes caps downloads so one oversized upload cannot pin
// memory. Discord's own limit is in the same ballpark.
const maxAttachmentBytes = 16 << 20

var attachmentClient = &http.Client{Timeout: 30 * time.Second}

// handleMessageCreate scores image attachments posted in configured
// challenge channels. discordgo dispatches each handler on its own
// goroutine, so the CPU-bound scoring never blocks the gateway.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	attachment := firstImageAttachment(m.Attachments)
	if attachment == nil {
		return
	}

	ctx := context.Background()

	channelID, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		log.Printf("Error parsing channel ID %s: %v", m.ChannelID, err)
		return
	}

	// Only configured channels accept submissions; everywhere else an
	// image is just an image.
	timezone, err := b.settingsService.Timezone(ctx, channelID)
	if err != nil {
		if !errors.Is(err, service.ErrChannelNotConfigured) {
			log.Printf("Error resolving timezone for channel %d: %v", channelID, err)
		}
		return
	}

	discordID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		log.Printf("Error parsing Discord ID %s: %v", m.Author.ID, err)
		return
	}

	imageBytes, err := downloadAttachment(ctx, attachment.URL)
	if err != nil {
		log.Printf("Error downloading attachment for user %d: %v", discordID, err)
		b.replyTo(s, m, "I couldn't download your image. Please try posting it again.")
		return
	}

	result, err := b.submissionService.Submit(ctx, channelID, discordID, imageBytes, timezone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadySubmitted):
			b.replyTo(s, m, "You've already submitted a circle today. Come back after midnight!")
		case errors.Is(err, scoring.ErrUndecodable):
			b.replyTo(s, m, "I couldn't read that image. Try a PNG or JPEG.")
		case errors.Is(err, scoring.ErrNoShapeFound):
			b.replyTo(s, m, "I couldn't find a drawing in that image. Use a dark pen on a light background.")
		default:
			log.Printf("Error scoring submission from user %d in channel %d: %v", discordID, channelID, err)
			b.replyTo(s, m, "Something went wrong scoring your circle. Your attempt wasn't used, please try again.")
		}
		return
	}

	displayName := GetDisplayName(s, m.GuildID, m.Author.ID)
	embed := buildResultEmbed(displayName, result)
	if _, err := s.ChannelMessageSendEmbedReply(m.ChannelID, embed, m.Reference()); err != nil {
		log.Printf("Error sending result embed: %v", err)
	}
}

// firstImageAttachment returns the first attachment that looks like an
// image, or nil.
func firstImageAttachment(attachments []*discordgo.MessageAttachment) *discordgo.MessageAttachment {
	for _, attachment := range attachments {
		if strings.HasPrefix(attachment.ContentType, "image/") {
			return attachment
		}
	}
	return nil
}

// downloadAttachment fetches attachment bytes from Discord's CDN.
func downloadAttachment(ctx context.Context, url string) ([]byte, error) {
	return downloadLimited(ctx, url, maxAttachmentBytes)
}

func downloadLimited(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build attachment request: %w", err)
	}

	resp, err := attachmentClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment fetch returned status %d", resp.StatusCode)
	}

	// Read one byte past the cap so truncation is detectable; partial
	// bytes must never reach the decoder.
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("attachment exceeds %d byte limit", limit)
	}

	return data, nil
}

func (b *Bot) replyTo(s *discordgo.Session, m *discordgo.MessageCreate, message string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, message, m.Reference()); err != nil {
		log.Printf("Error sending reply: %v", err)
	}
}
