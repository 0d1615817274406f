package bot

const (
	textHelp = "Hi! I turn your photos, GIFs and videos into stickers.\n\n" +
		"/newstickerpack - create a new sticker pack\n" +
		"/addsticker - reply to a photo, GIF, video or sticker to add it to your active pack\n" +
		"/setstickerpack <link> - make an existing pack your active pack\n" +
		"/cancel - cancel pack creation"

	textAskTitle        = "Send me the title for your new sticker pack (max 64 characters)."
	textTitleTooLong    = "The title is too long (max 64 characters). Send a shorter one."
	textTitleEmpty      = "The title can't be empty. Send the title as text."
	textAskMedia        = "Great! Now send the first photo, GIF or video for the pack."
	textMediaExpected   = "Please send a photo, GIF or video for the first sticker, or /cancel."
	textBusy            = "Still creating your pack, please wait."
	textCancelled       = "Pack creation cancelled."
	textNothingToCancel = "Nothing to cancel."
	textSetUsage        = "Usage: /setstickerpack https://t.me/addstickers/your_pack_name"
	textReplyToMedia    = "Reply to a photo, GIF, video or sticker with /addsticker."
	textUnknownCommand  = "Unknown command. Send /help for the list of commands."
	textProcessing      = "Processing…"
	textQueueDown       = "The queue is unavailable right now. Try again later."

	textPackCreated = "Sticker pack created! 🎉\n"
	textPackBound   = "Active sticker pack set.\n"
)
