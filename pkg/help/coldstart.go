package help

const ColdstartYAML = `# spendguard Quick Start

commands:
  analyze_one: |
    spendguard analyze --url "https://shop.example.com/cart"

  analyze_local_html: |
    spendguard analyze --url "https://shop.example.com/cart" --file page.html

  batch_scan: |
    spendguard scan --urls "https://a.example.com,https://b.example.com" --workers 4

  watch_page: |
    spendguard watch --url "https://shop.example.com/cart" --interval 30s

  run_api: |
    spendguard serve --addr 127.0.0.1:8790

  chat: |
    OPENAI_API_KEY=sk-... spendguard chat

  history: |
    spendguard history list
    spendguard history show <conversation-id>
    spendguard history delete <conversation-id>

api_endpoints:
  health: "GET /health"
  latest_snapshot: "GET /api/context"
  analyze: "POST /api/analyze {url, html?}"
  dismiss_warning: "POST /api/warnings/dismiss {kind}"
  chat: "POST /api/chat {conversationId?, message, noContext?}"
  conversations: "GET /api/conversations, GET/DELETE /api/conversations/{id}"

page_types:
  - "shopping_cart (any URL containing /cart, /checkout, /order)"
  - "product_page (/product, /item, /p/)"
  - "shopping, financial, real_estate, automotive, subscription, education (keyword voting)"
  - "general (no category reached the vote threshold)"

warning_behavior:
  - "budget warning needs prices on the page, a shopping URL, and purchase-intent text"
  - "credit-card warning fires when the page mentions credit cards"
  - "each warning kind shows at most once per page load"
  - "dismissed warnings stay dismissed until navigation"
  - "warnings auto-dismiss after 10 seconds"
  - "allowed hosts (ramseysolutions.com, everydollar.com) never warn"

config:
  file: "config.yaml next to the binary (db_path, addr, watch_interval, allowed_hosts, openai_model, history_turns)"
  env: "OPENAI_API_KEY enables the chat command and /api/chat"

error_behavior:
  - "Malformed URLs: fail fast before fetching"
  - "Chat failures: the assistant apologizes instead of erroring the turn"
  - "Exit codes: 0=success, 1=failure"
`
