package i18n

// uiStrings is the static per-language string table. English is the
// authored source; other languages carry the shipped translations.
// Entries left identical to English are considered untranslated and are
// skipped by Lookup so the pipeline can fall through to a remote tier.
var uiStrings = map[string]map[string]string{
	"en": {
		"newChat":      "New chat",
		"send":         "Send",
		"settings":     "Settings",
		"explain":      "Explain",
		"flowchart":    "Flowchart",
		"solutionPlan": "Solution plan",
		"pasteUrl":     "Paste a GitHub URL",
		"language":     "Language",
		"apiKeys":      "API keys",
		"save":         "Save",
		"cancel":       "Cancel",
		"loading":      "Loading...",
		"copy":         "Copy",
		"delete":       "Delete",
	},
	"es": {
		"newChat":      "Nuevo chat",
		"send":         "Enviar",
		"settings":     "Ajustes",
		"explain":      "Explicar",
		"flowchart":    "Diagrama de flujo",
		"solutionPlan": "Plan de solución",
		"pasteUrl":     "Pega una URL de GitHub",
		"language":     "Idioma",
		"apiKeys":      "Claves API",
		"save":         "Guardar",
		"cancel":       "Cancelar",
		"loading":      "Cargando...",
		"copy":         "Copiar",
		"delete":       "Eliminar",
	},
	"fr": {
		"newChat":      "Nouvelle discussion",
		"send":         "Envoyer",
		"settings":     "Paramètres",
		"explain":      "Expliquer",
		"flowchart":    "Organigramme",
		"solutionPlan": "Plan de solution",
		"pasteUrl":     "Collez une URL GitHub",
		"language":     "Langue",
		"apiKeys":      "Clés API",
		"save":         "Enregistrer",
		"cancel":       "Annuler",
		"loading":      "Chargement...",
		"copy":         "Copier",
		"delete":       "Supprimer",
	},
	"de": {
		"newChat":      "Neuer Chat",
		"send":         "Senden",
		"settings":     "Einstellungen",
		"explain":      "Erklären",
		"flowchart":    "Flussdiagramm",
		"solutionPlan": "Lösungsplan",
		"pasteUrl":     "GitHub-URL einfügen",
		"language":     "Sprache",
		"apiKeys":      "API-Schlüssel",
		"save":         "Speichern",
		"cancel":       "Abbrechen",
		"loading":      "Wird geladen...",
		"copy":         "Kopieren",
		"delete":       "Löschen",
	},
	"it": {
		"newChat":      "Nuova chat",
		"send":         "Invia",
		"settings":     "Impostazioni",
		"explain":      "Spiega",
		"flowchart":    "Diagramma di flusso",
		"solutionPlan": "Piano di soluzione",
		"pasteUrl":     "Incolla un URL GitHub",
		"language":     "Lingua",
		"apiKeys":      "Chiavi API",
		"save":         "Salva",
		"cancel":       "Annulla",
		"loading":      "Caricamento...",
		"copy":         "Copia",
		"delete":       "Elimina",
	},
	"pt": {
		"newChat":      "Novo chat",
		"send":         "Enviar",
		"settings":     "Configurações",
		"explain":      "Explicar",
		"flowchart":    "Fluxograma",
		"solutionPlan": "Plano de solução",
		"pasteUrl":     "Cole uma URL do GitHub",
		"language":     "Idioma",
		"apiKeys":      "Chaves de API",
		"save":         "Salvar",
		"cancel":       "Cancelar",
		"loading":      "Carregando...",
		"copy":         "Copiar",
		"delete":       "Excluir",
	},
	"ru": {
		"newChat":      "Новый чат",
		"send":         "Отправить",
		"settings":     "Настройки",
		"explain":      "Объяснить",
		"flowchart":    "Блок-схема",
		"solutionPlan": "План решения",
		"pasteUrl":     "Вставьте ссылку GitHub",
		"language":     "Язык",
		"apiKeys":      "API-ключи",
		"save":         "Сохранить",
		"cancel":       "Отмена",
		"loading":      "Загрузка...",
		"copy":         "Копировать",
		"delete":       "Удалить",
	},
	"ja": {
		"newChat":      "新しいチャット",
		"send":         "送信",
		"settings":     "設定",
		"explain":      "説明",
		"flowchart":    "フローチャート",
		"solutionPlan": "解決プラン",
		"pasteUrl":     "GitHubのURLを貼り付け",
		"language":     "言語",
		"apiKeys":      "APIキー",
		"save":         "保存",
		"cancel":       "キャンセル",
		"loading":      "読み込み中...",
		"copy":         "コピー",
		"delete":       "削除",
	},
	"ko": {
		"newChat":      "새 채팅",
		"send":         "보내기",
		"settings":     "설정",
		"explain":      "설명",
		"flowchart":    "순서도",
		"solutionPlan": "해결 계획",
		"pasteUrl":     "GitHub URL 붙여넣기",
		"language":     "언어",
		"apiKeys":      "API 키",
		"save":         "저장",
		"cancel":       "취소",
		"loading":      "로딩 중...",
		"copy":         "복사",
		"delete":       "삭제",
	},
	"zh": {
		"newChat":      "新对话",
		"send":         "发送",
		"settings":     "设置",
		"explain":      "解释",
		"flowchart":    "流程图",
		"solutionPlan": "解决方案",
		"pasteUrl":     "粘贴 GitHub 链接",
		"language":     "语言",
		"apiKeys":      "API 密钥",
		"save":         "保存",
		"cancel":       "取消",
		"loading":      "加载中...",
		"copy":         "复制",
		"delete":       "删除",
	},
	"hi": {
		"newChat":      "नई चैट",
		"send":         "भेजें",
		"settings":     "सेटिंग्स",
		"explain":      "समझाएँ",
		"flowchart":    "फ़्लोचार्ट",
		"solutionPlan": "समाधान योजना",
		"pasteUrl":     "GitHub URL पेस्ट करें",
		"language":     "भाषा",
		"apiKeys":      "API कुंजियाँ",
		"save":         "सहेजें",
		"cancel":       "रद्द करें",
		"loading":      "लोड हो रहा है...",
		"copy":         "कॉपी करें",
		"delete":       "हटाएँ",
	},
	"ar": {
		"newChat":      "محادثة جديدة",
		"send":         "إرسال",
		"settings":     "الإعدادات",
		"explain":      "اشرح",
		"flowchart":    "مخطط انسيابي",
		"solutionPlan": "خطة الحل",
		"pasteUrl":     "الصق رابط GitHub",
		"language":     "اللغة",
		"apiKeys":      "مفاتيح API",
		"save":         "حفظ",
		"cancel":       "إلغاء",
		"loading":      "جارٍ التحميل...",
		"copy":         "نسخ",
		"delete":       "حذف",
	},
}
