package store

// schema is applied at startup. CREATE TABLE IF NOT EXISTS keeps restarts
// idempotent; migration tooling is out of scope.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      VARCHAR(50) UNIQUE NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role          VARCHAR(10) NOT NULL DEFAULT 'USER',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	token      VARCHAR(512) UNIQUE NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id          BIGSERIAL PRIMARY KEY,
	name        VARCHAR(255) NOT NULL,
	description VARCHAR(4000),
	price       NUMERIC(12,2) NOT NULL,
	stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	category    VARCHAR(100) NOT NULL,
	status      VARCHAR(10) NOT NULL DEFAULT 'ACTIVE',
	seller_id   BIGINT REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);

CREATE TABLE IF NOT EXISTS promo_codes (
	id               BIGSERIAL PRIMARY KEY,
	code             VARCHAR(64) UNIQUE NOT NULL,
	discount_type    VARCHAR(20) NOT NULL,
	discount_value   NUMERIC(12,2) NOT NULL,
	min_order_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	max_uses         INTEGER NOT NULL,
	current_uses     INTEGER NOT NULL DEFAULT 0 CHECK (current_uses <= max_uses),
	valid_from       TIMESTAMPTZ NOT NULL,
	valid_until      TIMESTAMPTZ NOT NULL,
	active           BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS orders (
	id              BIGSERIAL PRIMARY KEY,
	user_id         BIGINT NOT NULL REFERENCES users(id),
	status          VARCHAR(20) NOT NULL DEFAULT 'CREATED',
	promo_code_id   BIGINT REFERENCES promo_codes(id),
	total_amount    NUMERIC(12,2) NOT NULL DEFAULT 0,
	discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status);

CREATE TABLE IF NOT EXISTS order_items (
	id             BIGSERIAL PRIMARY KEY,
	order_id       BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id     BIGINT NOT NULL REFERENCES products(id),
	quantity       INTEGER NOT NULL CHECK (quantity > 0),
	price_at_order NUMERIC(12,2) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

CREATE TABLE IF NOT EXISTS user_operations (
	id             BIGSERIAL PRIMARY KEY,
	user_id        BIGINT NOT NULL REFERENCES users(id),
	operation_type VARCHAR(20) NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_user_operations_lookup ON user_operations(user_id, operation_type, created_at DESC);
`
