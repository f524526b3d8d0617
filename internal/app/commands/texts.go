package commands

const (
	textWelcome = "🎉 <b>Welcome to HyperGiga TG Bot!</b>\n\n" +
		"I'm a powerful Telegram bot that can help you with various tasks.\n\n" +
		"🔧 <b>Available features:</b>\n" +
		"• 📥 Media downloads\n" +
		"• 🤖 AI assistance\n" +
		"• 🎨 Sticker creation\n" +
		"• 🎮 Games\n" +
		"• 🔧 Utility tools\n\n" +
		"Use /help command to learn more!"

	textHelpTitle    = "📚 <b>Command Help</b>"
	textHelpUsage    = "📖 <b>Usage:</b>"
	textHelpExamples = "💡 <b>Examples:</b>"
	textHelpCooldown = "⏱️ <b>Cooldown:</b>"
	textHelpRoles    = "👥 <b>Permissions:</b>"

	textLangCurrent = "🌐 <b>Current language:</b> %s"
	textLangChanged = "✅ Language changed to: %s"

	textPing   = "🏓 <b>Ping:</b> %dms"
	textUptime = "⏱️ <b>Uptime:</b> %s"

	textNotFound = "❌ Command not found: %s"

	textDownloadProcessing = "📥 Downloading..."
	textDownloadSuccess    = "✅ Download completed!"
	textUnsupportedURL     = "❌ Unsupported URL"

	textConvertProcessing = "🔄 Converting..."
	textConvertSuccess    = "✅ Conversion completed!"

	textYTSearching = "🔍 Searching..."
	textYTResults   = "📺 <b>YouTube Results:</b>"
)
