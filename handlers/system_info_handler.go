package handlers

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"looseroles/bot"
	"looseroles/utils"
	"looseroles/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cpuCount, _ := cpu.Counts(true)
	cpuUsage := "n/a"
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	memory := "n/a"
	if vm, err := mem.VirtualMemory(); err == nil {
		memory = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}

	platform, kernel := "n/a", "n/a"
	if hostInfo, err := host.Info(); err == nil {
		platform = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		kernel = hostInfo.KernelVersion
	}

	dbSize := "n/a"
	if size, err := utils.FileSize(b.GetConfig().DatabasePath); err == nil {
		dbSize = fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
	}

	tracked := 0
	if msgs, err := database.GetSelfAssignMessages(b.DB); err == nil {
		tracked = len(msgs)
	} else {
		slog.Warn("failed to count self-assign messages", "error", err)
	}

	uptime := "n/a"
	if !b.StartedAt.IsZero() {
		uptime = time.Since(b.StartedAt).Round(time.Second).String()
	}

	embed := &discordgo.MessageEmbed{
		Title: "Bot status",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: platform, Inline: true},
			{Name: "🔧 Kernel", Value: kernel, Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU usage", Value: cpuUsage, Inline: true},
			{Name: "🧠 Memory", Value: memory, Inline: true},
			{Name: "🗃️ Database", Value: dbSize, Inline: true},
			{Name: "⏱️ WebSocket latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🔘 Button roles", Value: fmt.Sprintf("%d", b.ButtonRoles.Len()), Inline: true},
			{Name: "😀 Reaction roles", Value: fmt.Sprintf("%d", b.ReactionRoles.Len()), Inline: true},
			{Name: "📌 Tracked messages", Value: fmt.Sprintf("%d", tracked), Inline: true},
			{Name: "⌛ Uptime", Value: uptime, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Status at %s", time.Now().Format("15:04")),
		},
	}

	utils.SendEmbedResponse(s, i, embed)
}
